package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/metrics"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidCheckoutInput    = errors.New("shipping address and phone are required")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("order status transition not allowed")
)

// OrderEventPublisher delivers order events to a connected user
type OrderEventPublisher interface {
	SendToUser(userID uint, message interface{}) error
}

// OrderEvent is pushed to the order owner after checkout and every status change
type OrderEvent struct {
	Type        string            `json:"type"`
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      model.OrderStatus `json:"status"`
	Total       string            `json:"total"`
	At          time.Time         `json:"at"`
}

const (
	OrderEventCreated       = "order.created"
	OrderEventStatusChanged = "order.status_changed"
)

type CheckoutInput struct {
	ShippingAddress string
	Phone           string
}

type OrderService interface {
	Checkout(userID uint, input CheckoutInput) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	CancelOrder(userID, orderID uint) (*model.Order, error)
}

type orderService struct {
	db          *gorm.DB
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	promoRepo   repository.PromoCodeRepository
	publisher   OrderEventPublisher
	maxAttempts int
	clock       func() time.Time
}

// NewOrderService wires the order service. publisher may be nil.
func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	promoRepo repository.PromoCodeRepository,
	publisher OrderEventPublisher,
	maxAttempts int,
) OrderService {
	return &orderService{
		db:          db,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		promoRepo:   promoRepo,
		publisher:   publisher,
		maxAttempts: maxAttempts,
		clock:       time.Now,
	}
}

// Checkout turns the user's cart into a pending order. Totals are computed
// once with the promo code re-validated inside the transaction, the lines are
// copied into order items, the cart is emptied and one promo use is consumed.
// Any failure leaves cart, order and usage counter untouched.
func (s *orderService) Checkout(userID uint, input CheckoutInput) (*model.Order, error) {
	address := strings.TrimSpace(input.ShippingAddress)
	phone := strings.TrimSpace(input.Phone)
	if address == "" || phone == "" {
		return nil, ErrInvalidCheckoutInput
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
	})

	var order *model.Order
	err := withRetry(s.maxAttempts, "checkout", func() error {
		order = nil
		return s.db.Transaction(func(tx *gorm.DB) error {
			created, err := s.checkoutTx(tx, userID, address, phone)
			if err != nil {
				return err
			}
			order = created
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrPromoCodeExhausted) {
			logger.Warn("Checkout rejected", map[string]interface{}{
				"user_id": userID,
				"reason":  err.Error(),
			})
			metrics.RecordCheckout(metrics.ResultRejected)
		} else {
			logger.Error("Checkout failed", err, map[string]interface{}{
				"user_id": userID,
			})
			metrics.RecordCheckout(metrics.ResultError)
		}
		return nil, err
	}

	metrics.RecordCheckout(metrics.ResultSuccess)
	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount.String(),
		"promo_code":   order.PromoCode,
	})
	s.publish(order, OrderEventCreated)
	return order, nil
}

func (s *orderService) checkoutTx(tx *gorm.DB, userID uint, address, phone string) (*model.Order, error) {
	cartRepo := s.cartRepo.WithTx(tx)
	promoRepo := s.promoRepo.WithTx(tx)

	cart, err := lockOrCreateCart(cartRepo, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	now := s.clock()

	// an attached code that stopped being valid simply gives no discount
	var promo *model.PromoCode
	if cart.PromoCodeID != nil {
		found, err := promoRepo.FindByID(*cart.PromoCodeID)
		switch {
		case err == nil && found.IsValid(now):
			promo = found
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		default:
			logger.Info("Attached promo code no longer valid at checkout", map[string]interface{}{
				"user_id":       userID,
				"promo_code_id": *cart.PromoCodeID,
			})
		}
	}
	cart.PromoCode = promo

	order := &model.Order{
		OrderNumber:     uuid.NewString(),
		UserID:          userID,
		Subtotal:        cart.Subtotal(),
		DiscountAmount:  cart.Discount(now),
		TotalAmount:     cart.Total(now),
		ShippingAddress: address,
		Phone:           phone,
		Status:          model.OrderStatusPending,
		Items:           make([]model.OrderItem, 0, len(cart.Items)),
	}
	if promo != nil {
		order.PromoCode = promo.Code
	}
	for _, line := range cart.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID:      line.ProductID,
			CustomDesignID: line.CustomDesignID,
			ProductName:    line.ProductName,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
		})
	}

	orderRepo := s.orderRepo.WithTx(tx)
	if err := orderRepo.Create(order); err != nil {
		return nil, err
	}
	order.OrderNumber = model.FormatOrderNumber(order.ID)
	if err := orderRepo.UpdateOrderNumber(order.ID, order.OrderNumber); err != nil {
		return nil, err
	}

	if err := cartRepo.DeleteItemsByCartID(cart.ID); err != nil {
		return nil, err
	}
	if cart.PromoCodeID != nil {
		if err := cartRepo.SetPromoCode(cart.ID, nil); err != nil {
			return nil, err
		}
	}

	if promo != nil {
		consumed, err := consumePromoUse(promoRepo, promo, now)
		if err != nil {
			return nil, err
		}
		if !consumed {
			return nil, ErrPromoCodeExhausted
		}
	}

	return order, nil
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	logger.Debug("User orders fetched", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

// GetOrderByID returns the order only to its owner
func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		logger.Warn("Order requested by non-owner", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return s.transition(order, status)
}

// CancelOrder lets the owner cancel an order that has not reached a
// terminal state.
func (s *orderService) CancelOrder(userID, orderID uint) (*model.Order, error) {
	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.transition(order, model.OrderStatusCancelled)
}

func (s *orderService) transition(order *model.Order, next model.OrderStatus) (*model.Order, error) {
	if !order.Status.CanTransitionTo(next) {
		logger.Warn("Rejected order status transition", map[string]interface{}{
			"order_id": order.ID,
			"from":     order.Status,
			"to":       next,
		})
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.orderRepo.UpdateStatus(order.ID, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !updated {
		// status moved underneath us
		return nil, ErrInvalidStatusTransition
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": order.ID,
		"from":     order.Status,
		"to":       next,
	})
	order.Status = next
	s.publish(order, OrderEventStatusChanged)
	return order, nil
}

func (s *orderService) publish(order *model.Order, eventType string) {
	if s.publisher == nil {
		return
	}

	event := OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.TotalAmount.StringFixed(2),
		At:          s.clock(),
	}
	if err := s.publisher.SendToUser(order.UserID, event); err != nil {
		logger.Warn("Failed to publish order event", map[string]interface{}{
			"order_id": order.ID,
			"type":     eventType,
			"error":    err.Error(),
		})
	}
}
