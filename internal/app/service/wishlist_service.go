package service

import (
	"errors"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrWishlistItemAlreadyExists = errors.New("product already in wishlist")
	ErrWishlistItemNotFound      = errors.New("wishlist item not found")
)

type WishlistService interface {
	GetUserWishlist(userID uint) ([]model.WishlistItem, error)
	AddToWishlist(userID, productID uint) (*model.WishlistItem, error)
	RemoveFromWishlist(userID, productID uint) error
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

func (s *wishlistService) GetUserWishlist(userID uint) ([]model.WishlistItem, error) {
	return s.wishlistRepo.FindByUserID(userID)
}

// AddToWishlist saves a visible catalog product. Out-of-stock products can be
// saved; hidden ones cannot.
func (s *wishlistService) AddToWishlist(userID, productID uint) (*model.WishlistItem, error) {
	product, err := visibleProduct(s.productRepo.FindByID(productID))
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			logger.Warn("Cannot add to wishlist: product not found", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
			})
		}
		return nil, err
	}

	item := &model.WishlistItem{UserID: userID, ProductID: product.ID}
	if err := s.wishlistRepo.Create(item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrWishlistItemAlreadyExists
		}
		logger.Error("Failed to create wishlist item", err, map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, err
	}
	item.Product = *product

	logger.Info("Item added to wishlist", map[string]interface{}{
		"wishlist_item_id": item.ID,
		"user_id":          userID,
		"product_id":       productID,
	})
	return item, nil
}

func (s *wishlistService) RemoveFromWishlist(userID, productID uint) error {
	removed, err := s.wishlistRepo.Delete(userID, productID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrWishlistItemNotFound
	}

	logger.Info("Item removed from wishlist", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})
	return nil
}
