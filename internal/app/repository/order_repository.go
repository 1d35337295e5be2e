package repository

import (
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

// OrderExportFilter selects orders for the admin export. Zero values mean
// no restriction.
type OrderExportFilter struct {
	Status model.OrderStatus
	From   time.Time
	To     time.Time
}

type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(order *model.Order) error
	UpdateOrderNumber(id uint, number string) error
	FindByID(id uint) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindForExport(filter OrderExportFilter) ([]model.Order, error)
	UpdateStatus(id uint, from, to model.OrderStatus) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id ASC")
	})
}

// Create inserts the order together with its items
func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount.String(),
		"item_count":   len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	return nil
}

func (r *orderRepository) UpdateOrderNumber(id uint, number string) error {
	err := r.db.Model(&model.Order{}).Where("id = ?", id).Update("order_number", number).Error
	if err != nil {
		logger.Error("Failed to assign order number", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	var orders []model.Order
	if err := r.preloadOrder().Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user ID in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Debug("Orders found by user ID in database", map[string]interface{}{
		"user_id": userID,
		"count":   len(orders),
	})
	return orders, nil
}

func (r *orderRepository) FindForExport(filter OrderExportFilter) ([]model.Order, error) {
	query := r.preloadOrder()
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}

	var orders []model.Order
	if err := query.Order("id ASC").Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders for export", err)
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves the order from one status to another. It reports false
// when the order was no longer in the from status.
func (r *orderRepository) UpdateStatus(id uint, from, to model.OrderStatus) (bool, error) {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id": id,
		"from":     from,
		"to":       to,
	})

	result := r.db.Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   to,
		})
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
