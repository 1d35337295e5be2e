package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type DesignStatus string

const (
	DesignStatusPending  DesignStatus = "pending"
	DesignStatusApproved DesignStatus = "approved"
	DesignStatusPrinted  DesignStatus = "printed"
	DesignStatusRejected DesignStatus = "rejected"
)

// CustomDesign is a customer-supplied artwork printed to order
type CustomDesign struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Title     string          `gorm:"type:varchar(200)" json:"title"`
	Notes     string          `gorm:"type:text" json:"notes"`
	Size      PrintSize       `gorm:"type:varchar(5);not null" json:"size"`
	Framed    bool            `gorm:"not null;default:false" json:"framed"`
	FileKey   string          `gorm:"type:varchar(255);not null" json:"file_key"` // object key in the design bucket
	FileURL   string          `gorm:"type:text;not null" json:"file_url"`
	Phone     string          `gorm:"type:varchar(30)" json:"phone"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"` // fixed at creation
	Status    DesignStatus    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CustomDesign) TableName() string {
	return "custom_designs"
}

// DisplayName is the cart line name, e.g. "Custom Design (A3, framed)"
func (d *CustomDesign) DisplayName() string {
	if d.Framed {
		return fmt.Sprintf("Custom Design (%s, framed)", d.Size)
	}
	return fmt.Sprintf("Custom Design (%s)", d.Size)
}
