package customers

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Profile is the customer row the order path guarantees exists before an
// order is created. Authentication and roles live outside this module.
type Profile struct {
	ID       string `gorm:"type:char(36);primaryKey"`
	FullName string `gorm:"type:varchar(255);not null"`
	Phone    string `gorm:"type:varchar(32);not null"`
	Email    string `gorm:"type:varchar(255);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Profile) TableName() string { return "customer_profiles" }

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Upsert inserts the profile or refreshes the contact snapshot fields.
func (r *Repo) Upsert(ctx context.Context, p Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "phone", "email", "updated_at"}),
		}).
		Create(&p).Error
}

func (r *Repo) Get(ctx context.Context, id string) (Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, err
}
