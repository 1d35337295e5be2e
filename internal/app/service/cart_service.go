package service

import (
	"errors"
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/metrics"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
)

type CartService interface {
	GetCart(userID uint) (*model.Cart, error)
	AddCatalogItem(userID, productID uint, quantity int) (*model.Cart, error)
	AddDesignItem(userID uint, design *model.CustomDesign) (*model.Cart, error)
	AddNewDesignItem(userID uint, design *model.CustomDesign, save DesignSaver) (*model.Cart, error)
	UpdateQuantity(userID, itemID uint, quantity int) (*model.Cart, error)
	RemoveItem(userID, itemID uint) (*model.Cart, error)
	ApplyPromoCode(userID uint, code string) (*model.Cart, error)
	RemovePromoCode(userID uint) (*model.Cart, error)
	ClearCart(userID uint) (*model.Cart, error)
}

type cartService struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	promoRepo   repository.PromoCodeRepository
	maxAttempts int
	clock       func() time.Time
}

func NewCartService(
	db *gorm.DB,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	promoRepo repository.PromoCodeRepository,
	maxAttempts int,
) CartService {
	return &cartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		promoRepo:   promoRepo,
		maxAttempts: maxAttempts,
		clock:       time.Now,
	}
}

// lockOrCreateCart returns the user's cart row locked for the current
// transaction, creating it on first use. A concurrent first insert surfaces
// as gorm.ErrDuplicatedKey and is retried by the caller.
func lockOrCreateCart(repo repository.CartRepository, userID uint) (*model.Cart, error) {
	cart, err := repo.FindByUserIDForUpdate(userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = &model.Cart{UserID: userID}
	if err := repo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

type cartMutation func(tx *gorm.DB, repo repository.CartRepository, cart *model.Cart) error

// mutate runs fn against the locked cart in one transaction and returns the
// reloaded cart.
func (s *cartService) mutate(userID uint, operation string, fn cartMutation) (*model.Cart, error) {
	var result *model.Cart
	err := withRetry(s.maxAttempts, operation, func() error {
		return s.db.Transaction(func(tx *gorm.DB) error {
			repo := s.cartRepo.WithTx(tx)
			cart, err := lockOrCreateCart(repo, userID)
			if err != nil {
				return err
			}
			if err := fn(tx, repo, cart); err != nil {
				return err
			}
			result, err = repo.FindByID(cart.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *cartService) GetCart(userID uint) (*model.Cart, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	cart, err := s.mutate(userID, "get_cart", func(*gorm.DB, repository.CartRepository, *model.Cart) error {
		return nil
	})
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return cart, nil
}

func (s *cartService) AddCatalogItem(userID, productID uint, quantity int) (*model.Cart, error) {
	logger.Info("Adding product to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})

	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	return s.mutate(userID, "add_catalog_item", func(tx *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		product, err := s.productRepo.WithTx(tx).FindByID(productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn("Cannot add to cart: product not found", map[string]interface{}{
					"user_id":    userID,
					"product_id": productID,
				})
				return ErrProductNotFound
			}
			return err
		}
		if !product.IsPurchasable() {
			logger.Warn("Cannot add to cart: product unavailable", map[string]interface{}{
				"user_id":    userID,
				"product_id": productID,
				"is_active":  product.IsActive,
				"in_stock":   product.InStock,
			})
			return ErrProductUnavailable
		}

		// the first add fixes the unit price; later adds only grow quantity
		existing, err := repo.FindItemByProduct(cart.ID, product.ID)
		if err == nil {
			return repo.UpdateItemQuantity(existing.ID, existing.Quantity+quantity)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return repo.CreateItem(&model.CartItem{
			CartID:      cart.ID,
			UserID:      userID,
			ProductID:   &product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.FinalPrice(),
		})
	})
}

// DesignSaver persists a design inside the cart transaction
type DesignSaver func(tx *gorm.DB, design *model.CustomDesign) error

// AddDesignItem always appends a new line; design lines never merge.
func (s *cartService) AddDesignItem(userID uint, design *model.CustomDesign) (*model.Cart, error) {
	return s.AddNewDesignItem(userID, design, nil)
}

// AddNewDesignItem is AddDesignItem for a design that is saved by save in the
// same transaction, so a failed cart write leaves no orphan design behind.
func (s *cartService) AddNewDesignItem(userID uint, design *model.CustomDesign, save DesignSaver) (*model.Cart, error) {
	if design == nil || design.UserID != userID {
		return nil, ErrDesignNotFound
	}

	logger.Info("Adding custom design to cart", map[string]interface{}{
		"user_id":   userID,
		"design_id": design.ID,
		"price":     design.Price.String(),
	})

	return s.mutate(userID, "add_design_item", func(tx *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		if save != nil {
			if err := save(tx, design); err != nil {
				return err
			}
		}
		return repo.CreateItem(&model.CartItem{
			CartID:         cart.ID,
			UserID:         userID,
			CustomDesignID: &design.ID,
			ProductName:    design.DisplayName(),
			Quantity:       1,
			UnitPrice:      design.Price,
		})
	})
}

// ownedItem loads a line and hides lines of other carts behind not-found
func ownedItem(repo repository.CartRepository, cart *model.Cart, itemID uint) (*model.CartItem, error) {
	item, err := repo.FindItemByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	if item.CartID != cart.ID {
		logger.Warn("Cart item belongs to another cart", map[string]interface{}{
			"user_id":      cart.UserID,
			"cart_item_id": itemID,
		})
		return nil, ErrCartItemNotFound
	}
	return item, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *cartService) UpdateQuantity(userID, itemID uint, quantity int) (*model.Cart, error) {
	logger.Info("Updating cart item quantity", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
		"quantity":     quantity,
	})

	return s.mutate(userID, "update_quantity", func(_ *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		item, err := ownedItem(repo, cart, itemID)
		if err != nil {
			return err
		}
		if quantity <= 0 {
			return repo.DeleteItem(item.ID)
		}
		return repo.UpdateItemQuantity(item.ID, quantity)
	})
}

func (s *cartService) RemoveItem(userID, itemID uint) (*model.Cart, error) {
	logger.Info("Removing item from cart", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": itemID,
	})

	return s.mutate(userID, "remove_item", func(_ *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		item, err := ownedItem(repo, cart, itemID)
		if err != nil {
			return err
		}
		return repo.DeleteItem(item.ID)
	})
}

// ApplyPromoCode attaches a code that is valid right now, replacing any
// previous one. No use is consumed until checkout.
func (s *cartService) ApplyPromoCode(userID uint, code string) (*model.Cart, error) {
	normalized := model.NormalizePromoCode(code)
	if normalized == "" {
		metrics.RecordPromoApplication(metrics.ResultRejected)
		return nil, ErrPromoCodeRequired
	}

	logger.Info("Applying promo code to cart", map[string]interface{}{
		"user_id": userID,
		"code":    normalized,
	})

	cart, err := s.mutate(userID, "apply_promo_code", func(tx *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		promo, err := s.promoRepo.WithTx(tx).FindByCode(normalized)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidPromoCode
			}
			return err
		}
		if !promo.IsValid(s.clock()) {
			return ErrPromoCodeExpiredOrInactive
		}
		return repo.SetPromoCode(cart.ID, &promo.ID)
	})

	switch {
	case err == nil:
		metrics.RecordPromoApplication(metrics.ResultSuccess)
	case errors.Is(err, ErrInvalidPromoCode), errors.Is(err, ErrPromoCodeExpiredOrInactive):
		logger.Warn("Promo code rejected", map[string]interface{}{
			"user_id": userID,
			"code":    normalized,
			"reason":  err.Error(),
		})
		metrics.RecordPromoApplication(metrics.ResultRejected)
	default:
		metrics.RecordPromoApplication(metrics.ResultError)
	}
	return cart, err
}

func (s *cartService) RemovePromoCode(userID uint) (*model.Cart, error) {
	logger.Info("Removing promo code from cart", map[string]interface{}{
		"user_id": userID,
	})

	return s.mutate(userID, "remove_promo_code", func(_ *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		if cart.PromoCodeID == nil {
			return nil
		}
		return repo.SetPromoCode(cart.ID, nil)
	})
}

// ClearCart drops every line and the attached promo code
func (s *cartService) ClearCart(userID uint) (*model.Cart, error) {
	logger.Info("Clearing cart", map[string]interface{}{
		"user_id": userID,
	})

	return s.mutate(userID, "clear_cart", func(_ *gorm.DB, repo repository.CartRepository, cart *model.Cart) error {
		if err := repo.DeleteItemsByCartID(cart.ID); err != nil {
			return err
		}
		return repo.SetPromoCode(cart.ID, nil)
	})
}
