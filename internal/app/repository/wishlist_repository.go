package repository

import (
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

type WishlistRepository interface {
	Create(item *model.WishlistItem) error
	FindByUserID(userID uint) ([]model.WishlistItem, error)
	Delete(userID, productID uint) (int64, error)
}

type wishlistRepository struct {
	db *gorm.DB
}

func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Create inserts the item. A second save of the same product fails the
// (user, product) unique index with gorm.ErrDuplicatedKey.
func (r *wishlistRepository) Create(item *model.WishlistItem) error {
	logger.Debug("Creating wishlist item in database", map[string]interface{}{
		"user_id":    item.UserID,
		"product_id": item.ProductID,
	})

	if err := r.db.Create(item).Error; err != nil {
		logger.Debug("Failed to create wishlist item in database", map[string]interface{}{
			"user_id":    item.UserID,
			"product_id": item.ProductID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// FindByUserID lists saved products, newest first. Items whose product was
// deleted or hidden are left out.
func (r *wishlistRepository) FindByUserID(userID uint) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	err := r.db.
		Select("wishlist_items.*").
		Joins("JOIN products ON products.id = wishlist_items.product_id AND products.deleted_at IS NULL AND products.is_active = ?", true).
		Where("wishlist_items.user_id = ?", userID).
		Preload("Product.Category").
		Order("wishlist_items.created_at DESC, wishlist_items.id DESC").
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to find wishlist items by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return items, nil
}

func (r *wishlistRepository) Delete(userID, productID uint) (int64, error) {
	result := r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&model.WishlistItem{})
	if result.Error != nil {
		logger.Error("Failed to delete wishlist item from database", result.Error, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
