package service

import (
	"errors"
	"strings"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")
	ErrReviewAlreadyExists = errors.New("product already reviewed by this user")
)

type ReviewService interface {
	AddReview(userID, productID uint, rating int, comment string) (*model.Review, error)
	GetProductReviews(productID uint) ([]model.Review, error)
	ApproveReview(reviewID uint) (*model.Review, error)
}

type reviewService struct {
	db          *gorm.DB
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

func NewReviewService(
	db *gorm.DB,
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		db:          db,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// AddReview stores an unapproved review; it is listed once approved
func (s *reviewService) AddReview(userID, productID uint, rating int, comment string) (*model.Review, error) {
	if rating < model.MinRating || rating > model.MaxRating {
		return nil, ErrInvalidRating
	}

	if _, err := visibleProduct(s.productRepo.FindByID(productID)); err != nil {
		return nil, err
	}

	exists, err := s.reviewRepo.ExistsByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewAlreadyExists
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrReviewAlreadyExists
		}
		return nil, err
	}

	logger.Info("Review submitted", map[string]interface{}{
		"review_id":  review.ID,
		"product_id": productID,
		"user_id":    userID,
		"rating":     rating,
	})
	return review, nil
}

func (s *reviewService) GetProductReviews(productID uint) ([]model.Review, error) {
	if _, err := visibleProduct(s.productRepo.FindByID(productID)); err != nil {
		return nil, err
	}
	return s.reviewRepo.FindApprovedByProductID(productID)
}

// ApproveReview publishes a review and refreshes the product rating
func (s *reviewService) ApproveReview(reviewID uint) (*model.Review, error) {
	var review *model.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reviewRepo := s.reviewRepo.WithTx(tx)

		found, err := reviewRepo.FindByID(reviewID)
		if err != nil {
			return err
		}
		if err := reviewRepo.Approve(reviewID); err != nil {
			return err
		}

		ratings, err := reviewRepo.ApprovedRatings(found.ProductID)
		if err != nil {
			return err
		}
		average := averageRating(ratings)
		if err := s.productRepo.WithTx(tx).UpdateRating(found.ProductID, average); err != nil {
			return err
		}

		found.IsApproved = true
		review = found
		logger.Info("Review approved", map[string]interface{}{
			"review_id":  reviewID,
			"product_id": found.ProductID,
			"rating":     average.String(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

func averageRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return decimal.NewFromInt(int64(sum)).
		DivRound(decimal.NewFromInt(int64(len(ratings))), 2)
}
