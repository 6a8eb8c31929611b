package subscribers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subscriber struct {
	ID       string `gorm:"type:char(36);primaryKey"`
	FullName string `gorm:"type:varchar(255);not null"`
	// stored lowercased; uniqueness is case-insensitive
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex:ux_subscribers_email"`
	IsActive bool   `gorm:"not null;default:true"`

	UnsubscribedAt *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (Subscriber) TableName() string { return "subscribers" }

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListActive(ctx context.Context) ([]Subscriber, error) {
	var out []Subscriber
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *Repo) ByID(ctx context.Context, id string) (Subscriber, bool, error) {
	var s Subscriber
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Subscriber{}, false, nil
	}
	if err != nil {
		return Subscriber{}, false, err
	}
	return s, true, nil
}

// Subscribe creates the subscriber or reactivates a previously
// unsubscribed one with the same email.
func (r *Repo) Subscribe(ctx context.Context, fullName, email string) (Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()

	var existing Subscriber
	err := r.db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err == nil {
		if err := r.db.WithContext(ctx).Model(&Subscriber{}).
			Where("id = ?", existing.ID).
			Updates(map[string]any{
				"full_name":       fullName,
				"is_active":       true,
				"unsubscribed_at": nil,
				"updated_at":      now,
			}).Error; err != nil {
			return Subscriber{}, err
		}
		existing.FullName = fullName
		existing.IsActive = true
		existing.UnsubscribedAt = nil
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Subscriber{}, err
	}

	s := Subscriber{
		ID:        uuid.NewString(),
		FullName:  fullName,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return Subscriber{}, err
	}
	return s, nil
}

func (r *Repo) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Subscriber{}).
		Where("email = ?", email).
		Updates(map[string]any{
			"is_active":       false,
			"unsubscribed_at": now,
			"updated_at":      now,
		}).Error
}
