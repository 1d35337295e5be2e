package repository

import (
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	WithTx(tx *gorm.DB) ReviewRepository
	Create(review *model.Review) error
	FindByID(id uint) (*model.Review, error)
	FindApprovedByProductID(productID uint) ([]model.Review, error)
	ExistsByUserAndProduct(userID, productID uint) (bool, error)
	Approve(id uint) error
	ApprovedRatings(productID uint) ([]int, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &reviewRepository{db: tx}
}

func (r *reviewRepository) Create(review *model.Review) error {
	logger.Debug("Creating review in database", map[string]interface{}{
		"product_id": review.ProductID,
		"user_id":    review.UserID,
		"rating":     review.Rating,
	})

	if err := r.db.Create(review).Error; err != nil {
		logger.Warn("Failed to create review in database", map[string]interface{}{
			"product_id": review.ProductID,
			"user_id":    review.UserID,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

func (r *reviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindApprovedByProductID(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Preload("User").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		logger.Error("Failed to find reviews by product ID", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) ExistsByUserAndProduct(userID, productID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *reviewRepository) Approve(id uint) error {
	result := r.db.Model(&model.Review{}).Where("id = ?", id).Update("is_approved", true)
	if result.Error != nil {
		logger.Error("Failed to approve review", result.Error, map[string]interface{}{
			"review_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApprovedRatings returns the ratings of every approved review of a product
func (r *reviewRepository) ApprovedRatings(productID uint) ([]int, error) {
	var ratings []int
	err := r.db.Model(&model.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
