package repository

import (
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

type PromoCodeRepository interface {
	WithTx(tx *gorm.DB) PromoCodeRepository
	Create(promo *model.PromoCode) error
	FindByID(id uint) (*model.PromoCode, error)
	FindByCode(code string) (*model.PromoCode, error)
	FindAll() ([]model.PromoCode, error)
	UpdateActive(id uint, active bool) error
	Delete(id uint) error
	IncrementUsage(id uint) (bool, error)
	DeactivateExpired(now time.Time) (int64, error)
}

type promoCodeRepository struct {
	db *gorm.DB
}

func NewPromoCodeRepository(db *gorm.DB) PromoCodeRepository {
	return &promoCodeRepository{db: db}
}

func (r *promoCodeRepository) WithTx(tx *gorm.DB) PromoCodeRepository {
	return &promoCodeRepository{db: tx}
}

func (r *promoCodeRepository) Create(promo *model.PromoCode) error {
	logger.Debug("Creating promo code in database", map[string]interface{}{
		"code": promo.Code,
	})

	if err := r.db.Create(promo).Error; err != nil {
		logger.Error("Failed to create promo code in database", err, map[string]interface{}{
			"code": promo.Code,
		})
		return err
	}

	logger.Debug("Promo code created in database", map[string]interface{}{
		"promo_code_id": promo.ID,
		"code":          promo.Code,
	})
	return nil
}

func (r *promoCodeRepository) FindByID(id uint) (*model.PromoCode, error) {
	var promo model.PromoCode
	if err := r.db.First(&promo, id).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

// FindByCode expects an already normalized code
func (r *promoCodeRepository) FindByCode(code string) (*model.PromoCode, error) {
	logger.Debug("Finding promo code by code in database", map[string]interface{}{
		"code": code,
	})

	var promo model.PromoCode
	if err := r.db.Where("code = ?", code).First(&promo).Error; err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *promoCodeRepository) FindAll() ([]model.PromoCode, error) {
	var promos []model.PromoCode
	if err := r.db.Order("created_at DESC").Find(&promos).Error; err != nil {
		logger.Error("Failed to list promo codes in database", err)
		return nil, err
	}
	return promos, nil
}

func (r *promoCodeRepository) UpdateActive(id uint, active bool) error {
	result := r.db.Model(&model.PromoCode{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		logger.Error("Failed to update promo code activation in database", result.Error, map[string]interface{}{
			"promo_code_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *promoCodeRepository) Delete(id uint) error {
	logger.Debug("Deleting promo code from database", map[string]interface{}{
		"promo_code_id": id,
	})

	result := r.db.Delete(&model.PromoCode{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete promo code from database", result.Error, map[string]interface{}{
			"promo_code_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementUsage bumps used_count in a single guarded UPDATE. It returns false
// when the cap was already reached, so concurrent callers can never push
// used_count past max_uses.
func (r *promoCodeRepository) IncrementUsage(id uint) (bool, error) {
	result := r.db.Model(&model.PromoCode{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		logger.Error("Failed to increment promo code usage in database", result.Error, map[string]interface{}{
			"promo_code_id": id,
		})
		return false, result.Error
	}

	logger.Debug("Promo code usage increment attempted", map[string]interface{}{
		"promo_code_id": id,
		"incremented":   result.RowsAffected == 1,
	})
	return result.RowsAffected == 1, nil
}

// DeactivateExpired switches off active codes whose window ended before now
func (r *promoCodeRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.PromoCode{}).
		Where("is_active = ? AND valid_until < ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		logger.Error("Failed to deactivate expired promo codes", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
