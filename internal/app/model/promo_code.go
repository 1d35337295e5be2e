package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

var hundred = decimal.NewFromInt(100)

type PromoCode struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	Code           string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // always upper-cased
	Description    string          `gorm:"type:text" json:"description"`
	DiscountType   DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount_value"`
	MinOrderAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"min_order_amount"`
	MaxUses        int             `gorm:"not null;default:0" json:"max_uses"` // 0 = unlimited
	UsedCount      int             `gorm:"not null;default:0" json:"used_count"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
	ValidFrom      time.Time       `gorm:"not null" json:"valid_from"`
	ValidUntil     time.Time       `gorm:"not null;index" json:"valid_until"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}

// NormalizePromoCode trims and upper-cases user input before lookup
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValid reports whether the code can discount an order at the given instant.
func (p *PromoCode) IsValid(now time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if now.Before(p.ValidFrom) || now.After(p.ValidUntil) {
		return false
	}
	return p.MaxUses == 0 || p.UsedCount < p.MaxUses
}

// IsExhausted reports whether the usage cap has been reached
func (p *PromoCode) IsExhausted() bool {
	return p.MaxUses > 0 && p.UsedCount >= p.MaxUses
}

// CalculateDiscount returns the discount granted on orderTotal, rounded half-up
// to 2 places. It never exceeds orderTotal and is never negative.
func (p *PromoCode) CalculateDiscount(orderTotal decimal.Decimal) decimal.Decimal {
	if orderTotal.LessThan(p.MinOrderAmount) || !orderTotal.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch p.DiscountType {
	case DiscountPercentage:
		discount = orderTotal.Mul(p.DiscountValue).Div(hundred)
	case DiscountFixed:
		discount = p.DiscountValue
	default:
		return decimal.Zero
	}

	discount = decimal.Min(discount, orderTotal)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}

// Label is the short text shown next to an applied code, e.g. "SAVE20 (20% off)"
func (p *PromoCode) Label() string {
	switch p.DiscountType {
	case DiscountPercentage:
		return fmt.Sprintf("%s (%s%% off)", p.Code, p.DiscountValue.String())
	case DiscountFixed:
		return fmt.Sprintf("%s (%s LE off)", p.Code, p.DiscountValue.StringFixed(2))
	default:
		return p.Code
	}
}
