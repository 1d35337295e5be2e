package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

type Product struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string          `gorm:"type:varchar(200);uniqueIndex;not null" json:"slug"`
	Description string          `gorm:"type:text" json:"description"`
	Size        PrintSize       `gorm:"type:varchar(5);not null;default:'A4'" json:"size"`
	Framed      bool            `gorm:"not null;default:false" json:"framed"`
	IsActive    bool            `gorm:"not null;index" json:"is_active"`
	InStock     bool            `gorm:"not null" json:"in_stock"`
	Featured    bool            `gorm:"not null;default:false" json:"featured"`
	Rating      decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"rating"` // average of approved reviews
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// FinalPrice is the current catalog price
func (p *Product) FinalPrice() decimal.Decimal {
	return FinalPrice(p.Size, p.Framed)
}

// IsPurchasable reports whether the product may be added to a cart
func (p *Product) IsPurchasable() bool {
	return p.IsActive && p.InStock
}
