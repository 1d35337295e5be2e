package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderNumberPrefix prefixes the zero-padded order id
const OrderNumberPrefix = "RHN-"

// forward progression; cancelled is handled separately
var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows one step forward, or cancellation from any
// non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return nextOrderStatus[s] == next
}

type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_number"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PromoCode       string          `gorm:"type:varchar(50)" json:"promo_code,omitempty"` // code text at checkout time
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	Phone           string          `gorm:"type:varchar(30);not null" json:"phone"`
	Status          OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// FormatOrderNumber derives the public order number from the order id
func FormatOrderNumber(id uint) string {
	return fmt.Sprintf("%s%08d", OrderNumberPrefix, id)
}

// OrderItem is an immutable copy of a cart line taken at checkout
type OrderItem struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	ProductID      *uint           `gorm:"index" json:"product_id,omitempty"`
	CustomDesignID *uint           `gorm:"index" json:"custom_design_id,omitempty"`
	ProductName    string          `gorm:"type:varchar(200);not null" json:"product_name"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
