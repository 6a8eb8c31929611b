package catalog

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Product struct {
	ID          string    `gorm:"type:char(36);primaryKey"`
	SKU         string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_products_sku"`
	Slug        string    `gorm:"type:varchar(160);not null;uniqueIndex:ux_products_slug"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	PriceSatang int       `gorm:"not null"`
	Stock       int       `gorm:"not null;default:0"`
	Status      string    `gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Product) TableName() string { return "products" }
