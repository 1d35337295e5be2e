package service

import (
	"errors"
	"strings"
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/metrics"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPromoCodeRequired          = errors.New("promo code is required")
	ErrInvalidPromoCode           = errors.New("invalid promo code")
	ErrPromoCodeExpiredOrInactive = errors.New("promo code is expired or inactive")
	ErrPromoCodeExhausted         = errors.New("promo code usage limit reached")
	ErrPromoCodeNotFound          = errors.New("promo code not found")
	ErrPromoCodeExists            = errors.New("promo code already exists")
	ErrInvalidPromoCodeInput      = errors.New("invalid promo code definition")
)

var maxPercentage = decimal.NewFromInt(100)

type CreatePromoCodeInput struct {
	Code           string
	Description    string
	DiscountType   model.DiscountType
	DiscountValue  decimal.Decimal
	MinOrderAmount decimal.Decimal
	MaxUses        int
	IsActive       bool
	ValidFrom      time.Time
	ValidUntil     time.Time
}

type PromoCodeService interface {
	CreatePromoCode(input CreatePromoCodeInput) (*model.PromoCode, error)
	ListPromoCodes() ([]model.PromoCode, error)
	SetActive(id uint, active bool) error
	DeletePromoCode(id uint) error
	ConsumeUse(promo *model.PromoCode, now time.Time) (bool, error)
	DeactivateExpired(now time.Time) (int64, error)
}

type promoCodeService struct {
	db        *gorm.DB
	promoRepo repository.PromoCodeRepository
	cartRepo  repository.CartRepository
}

func NewPromoCodeService(
	db *gorm.DB,
	promoRepo repository.PromoCodeRepository,
	cartRepo repository.CartRepository,
) PromoCodeService {
	return &promoCodeService{
		db:        db,
		promoRepo: promoRepo,
		cartRepo:  cartRepo,
	}
}

func validatePromoInput(input CreatePromoCodeInput) error {
	switch input.DiscountType {
	case model.DiscountPercentage:
		if !input.DiscountValue.IsPositive() || input.DiscountValue.GreaterThan(maxPercentage) {
			return ErrInvalidPromoCodeInput
		}
	case model.DiscountFixed:
		if !input.DiscountValue.IsPositive() {
			return ErrInvalidPromoCodeInput
		}
	default:
		return ErrInvalidPromoCodeInput
	}

	if input.MinOrderAmount.IsNegative() || input.MaxUses < 0 {
		return ErrInvalidPromoCodeInput
	}
	if !input.ValidUntil.After(input.ValidFrom) {
		return ErrInvalidPromoCodeInput
	}
	return nil
}

func (s *promoCodeService) CreatePromoCode(input CreatePromoCodeInput) (*model.PromoCode, error) {
	code := model.NormalizePromoCode(input.Code)
	if code == "" {
		return nil, ErrPromoCodeRequired
	}
	if err := validatePromoInput(input); err != nil {
		logger.Warn("Rejected promo code definition", map[string]interface{}{
			"code":           code,
			"discount_type":  input.DiscountType,
			"discount_value": input.DiscountValue.String(),
		})
		return nil, err
	}

	promo := &model.PromoCode{
		Code:           code,
		Description:    strings.TrimSpace(input.Description),
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue.Round(2),
		MinOrderAmount: input.MinOrderAmount.Round(2),
		MaxUses:        input.MaxUses,
		IsActive:       input.IsActive,
		ValidFrom:      input.ValidFrom,
		ValidUntil:     input.ValidUntil,
	}

	if err := s.promoRepo.Create(promo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPromoCodeExists
		}
		return nil, err
	}

	logger.Info("Promo code created", map[string]interface{}{
		"promo_code_id": promo.ID,
		"code":          promo.Code,
	})
	return promo, nil
}

func (s *promoCodeService) ListPromoCodes() ([]model.PromoCode, error) {
	return s.promoRepo.FindAll()
}

func (s *promoCodeService) SetActive(id uint, active bool) error {
	if err := s.promoRepo.UpdateActive(id, active); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromoCodeNotFound
		}
		return err
	}

	logger.Info("Promo code activation changed", map[string]interface{}{
		"promo_code_id": id,
		"is_active":     active,
	})
	return nil
}

// DeletePromoCode detaches the code from every cart and removes it
func (s *promoCodeService) DeletePromoCode(id uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		detached, err := s.cartRepo.WithTx(tx).DetachPromoCode(id)
		if err != nil {
			return err
		}
		if err := s.promoRepo.WithTx(tx).Delete(id); err != nil {
			return err
		}
		logger.Info("Promo code deleted", map[string]interface{}{
			"promo_code_id":  id,
			"detached_carts": detached,
		})
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPromoCodeNotFound
	}
	return err
}

// ConsumeUse records one redemption. It returns false without touching the
// counter when the code is not valid at now, and false when a concurrent
// redemption took the last use.
func (s *promoCodeService) ConsumeUse(promo *model.PromoCode, now time.Time) (bool, error) {
	return consumePromoUse(s.promoRepo, promo, now)
}

func consumePromoUse(repo repository.PromoCodeRepository, promo *model.PromoCode, now time.Time) (bool, error) {
	if !promo.IsValid(now) {
		metrics.RecordPromoConsumption(metrics.ResultRejected)
		return false, nil
	}

	ok, err := repo.IncrementUsage(promo.ID)
	if err != nil {
		metrics.RecordPromoConsumption(metrics.ResultError)
		return false, err
	}
	if !ok {
		logger.Warn("Promo code usage limit reached during redemption", map[string]interface{}{
			"promo_code_id": promo.ID,
			"code":          promo.Code,
		})
		metrics.RecordPromoConsumption(metrics.ResultRejected)
		return false, nil
	}

	promo.UsedCount++
	metrics.RecordPromoConsumption(metrics.ResultSuccess)
	return true, nil
}

func (s *promoCodeService) DeactivateExpired(now time.Time) (int64, error) {
	count, err := s.promoRepo.DeactivateExpired(now)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Expired promo codes deactivated", map[string]interface{}{
			"count": count,
		})
		metrics.RecordPromoCodesExpired(count)
	}
	return count, nil
}
