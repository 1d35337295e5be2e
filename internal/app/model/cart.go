package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the per-user basket. Totals are derived from its items and the
// attached promo code on every read, never stored.
type Cart struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	PromoCodeID *uint      `gorm:"index" json:"promo_code_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PromoCode   *PromoCode `gorm:"foreignKey:PromoCodeID;constraint:OnDelete:SET NULL" json:"promo_code,omitempty"`
	Items       []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one line of a cart. Name and unit price are copied at add time.
// A line references either a catalog product or a custom design.
type CartItem struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	CartID         uint            `gorm:"not null;uniqueIndex:idx_cart_items_cart_product,priority:1" json:"cart_id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	ProductID      *uint           `gorm:"uniqueIndex:idx_cart_items_cart_product,priority:2" json:"product_id,omitempty"`
	CustomDesignID *uint           `gorm:"index" json:"custom_design_id,omitempty"`
	ProductName    string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity       int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is unit price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

// Discount is zero when no code is attached or the attached code is no longer
// valid at now. The reference itself stays until explicitly removed.
func (c *Cart) Discount(now time.Time) decimal.Decimal {
	if c.PromoCode == nil || !c.PromoCode.IsValid(now) {
		return decimal.Zero
	}
	return c.PromoCode.CalculateDiscount(c.Subtotal())
}

func (c *Cart) Total(now time.Time) decimal.Decimal {
	total := c.Subtotal().Sub(c.Discount(now))
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartSummary is the value set shown to the customer for a cart
type CartSummary struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
	PromoCode string // label of the attached code, empty when none
}

func (c *Cart) Summary(now time.Time) CartSummary {
	summary := CartSummary{
		Subtotal:  c.Subtotal(),
		Discount:  c.Discount(now),
		ItemCount: c.ItemCount(),
	}
	summary.Total = c.Total(now)
	if c.PromoCode != nil {
		summary.PromoCode = c.PromoCode.Label()
	}
	return summary
}
