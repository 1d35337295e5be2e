package repository

import (
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

type DesignRepository interface {
	WithTx(tx *gorm.DB) DesignRepository
	Create(design *model.CustomDesign) error
	FindByID(id uint) (*model.CustomDesign, error)
	FindByUserID(userID uint) ([]model.CustomDesign, error)
}

type designRepository struct {
	db *gorm.DB
}

func NewDesignRepository(db *gorm.DB) DesignRepository {
	return &designRepository{db: db}
}

func (r *designRepository) WithTx(tx *gorm.DB) DesignRepository {
	return &designRepository{db: tx}
}

func (r *designRepository) Create(design *model.CustomDesign) error {
	logger.Debug("Creating custom design in database", map[string]interface{}{
		"user_id":  design.UserID,
		"size":     design.Size,
		"framed":   design.Framed,
		"file_key": design.FileKey,
	})

	if err := r.db.Create(design).Error; err != nil {
		logger.Error("Failed to create custom design in database", err, map[string]interface{}{
			"user_id": design.UserID,
		})
		return err
	}
	return nil
}

func (r *designRepository) FindByID(id uint) (*model.CustomDesign, error) {
	var design model.CustomDesign
	if err := r.db.First(&design, id).Error; err != nil {
		return nil, err
	}
	return &design, nil
}

func (r *designRepository) FindByUserID(userID uint) ([]model.CustomDesign, error) {
	var designs []model.CustomDesign
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&designs).Error
	if err != nil {
		logger.Error("Failed to find custom designs by user ID", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return designs, nil
}
