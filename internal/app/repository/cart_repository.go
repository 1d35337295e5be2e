package repository

import (
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUserIDForUpdate(userID uint) (*model.Cart, error)
	FindByID(id uint) (*model.Cart, error)
	Create(cart *model.Cart) error
	SetPromoCode(cartID uint, promoCodeID *uint) error
	DetachPromoCode(promoCodeID uint) (int64, error)
	FindItemByID(id uint) (*model.CartItem, error)
	FindItemByProduct(cartID, productID uint) (*model.CartItem, error)
	CreateItem(item *model.CartItem) error
	UpdateItemQuantity(id uint, quantity int) error
	DeleteItem(id uint) error
	DeleteItemsByCartID(cartID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) WithTx(tx *gorm.DB) CartRepository {
	return &cartRepository{db: tx}
}

func preloadCart(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.id ASC")
		}).
		Preload("PromoCode")
}

// FindByUserIDForUpdate loads the user's cart and takes a row lock on it for
// the rest of the transaction. SQLite ignores the lock clause.
func (r *cartRepository) FindByUserIDForUpdate(userID uint) (*model.Cart, error) {
	logger.Debug("Locking cart by user ID", map[string]interface{}{
		"user_id": userID,
	})

	var cart model.Cart
	err := preloadCart(r.db.Clauses(clause.Locking{Strength: "UPDATE"})).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepository) FindByID(id uint) (*model.Cart, error) {
	var cart model.Cart
	if err := preloadCart(r.db).First(&cart, id).Error; err != nil {
		logger.Error("Failed to find cart by ID in database", err, map[string]interface{}{
			"cart_id": id,
		})
		return nil, err
	}

	logger.Debug("Cart found by ID in database", map[string]interface{}{
		"cart_id":    cart.ID,
		"user_id":    cart.UserID,
		"item_count": len(cart.Items),
	})
	return &cart, nil
}

func (r *cartRepository) Create(cart *model.Cart) error {
	logger.Debug("Creating cart in database", map[string]interface{}{
		"user_id": cart.UserID,
	})

	if err := r.db.Create(cart).Error; err != nil {
		logger.Warn("Failed to create cart in database", map[string]interface{}{
			"user_id": cart.UserID,
			"error":   err.Error(),
		})
		return err
	}
	return nil
}

// SetPromoCode attaches a promo code to the cart, or detaches it when nil
func (r *cartRepository) SetPromoCode(cartID uint, promoCodeID *uint) error {
	logger.Debug("Setting cart promo code in database", map[string]interface{}{
		"cart_id":       cartID,
		"promo_code_id": promoCodeID,
	})

	err := r.db.Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("promo_code_id", promoCodeID).Error
	if err != nil {
		logger.Error("Failed to set cart promo code in database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}

// DetachPromoCode clears the code from every cart referencing it
func (r *cartRepository) DetachPromoCode(promoCodeID uint) (int64, error) {
	result := r.db.Model(&model.Cart{}).
		Where("promo_code_id = ?", promoCodeID).
		Update("promo_code_id", nil)
	if result.Error != nil {
		logger.Error("Failed to detach promo code from carts", result.Error, map[string]interface{}{
			"promo_code_id": promoCodeID,
		})
		return 0, result.Error
	}

	logger.Debug("Promo code detached from carts", map[string]interface{}{
		"promo_code_id": promoCodeID,
		"carts":         result.RowsAffected,
	})
	return result.RowsAffected, nil
}

func (r *cartRepository) FindItemByID(id uint) (*model.CartItem, error) {
	var item model.CartItem
	if err := r.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemByProduct(cartID, productID uint) (*model.CartItem, error) {
	logger.Debug("Finding cart item by product in database", map[string]interface{}{
		"cart_id":    cartID,
		"product_id": productID,
	})

	var item model.CartItem
	err := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) CreateItem(item *model.CartItem) error {
	logger.Debug("Creating cart item in database", map[string]interface{}{
		"cart_id":          item.CartID,
		"product_id":       item.ProductID,
		"custom_design_id": item.CustomDesignID,
		"quantity":         item.Quantity,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Warn("Failed to create cart item in database", map[string]interface{}{
			"cart_id":    item.CartID,
			"product_id": item.ProductID,
			"error":      err.Error(),
		})
		return err
	}

	logger.Debug("Cart item created in database", map[string]interface{}{
		"cart_item_id": item.ID,
		"cart_id":      item.CartID,
	})
	return nil
}

func (r *cartRepository) UpdateItemQuantity(id uint, quantity int) error {
	logger.Debug("Updating cart item quantity in database", map[string]interface{}{
		"cart_item_id": id,
		"quantity":     quantity,
	})

	err := r.db.Model(&model.CartItem{}).Where("id = ?", id).Update("quantity", quantity).Error
	if err != nil {
		logger.Error("Failed to update cart item quantity in database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItem(id uint) error {
	logger.Debug("Deleting cart item from database", map[string]interface{}{
		"cart_item_id": id,
	})

	if err := r.db.Delete(&model.CartItem{}, id).Error; err != nil {
		logger.Error("Failed to delete cart item from database", err, map[string]interface{}{
			"cart_item_id": id,
		})
		return err
	}
	return nil
}

func (r *cartRepository) DeleteItemsByCartID(cartID uint) error {
	logger.Debug("Deleting cart items by cart ID from database", map[string]interface{}{
		"cart_id": cartID,
	})

	if err := r.db.Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		logger.Error("Failed to delete cart items by cart ID from database", err, map[string]interface{}{
			"cart_id": cartID,
		})
		return err
	}
	return nil
}
