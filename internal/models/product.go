package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a marketplace listing a conversation can reference.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	SellerID uint    `gorm:"index" json:"seller_id"`
	Title    string  `gorm:"not null" json:"title"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
}

func (Product) TableName() string {
	return "agri_products"
}
