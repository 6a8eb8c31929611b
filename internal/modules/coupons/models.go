package coupons

import "time"

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Coupon is read-only from the order path; admin CRUD lives elsewhere.
type Coupon struct {
	ID             string     `gorm:"type:char(36);primaryKey"`
	Code           string     `gorm:"type:varchar(64);not null;uniqueIndex:ux_coupons_code"`
	DiscountType   string     `gorm:"type:varchar(16);not null"`
	DiscountValue  float64    `gorm:"type:numeric(12,2);not null"`
	MinSpendSatang int        `gorm:"not null;default:0"`
	Active         bool       `gorm:"not null;default:true"`
	ExpiresAt      *time.Time `gorm:""`
	CreatedAt      time.Time  `gorm:"not null"`
}

func (Coupon) TableName() string { return "coupons" }
