package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
)

type ReviewController struct {
	reviewService service.ReviewService
}

func NewReviewController(reviewService service.ReviewService) *ReviewController {
	return &ReviewController{
		reviewService: reviewService,
	}
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

func reviewBody(review *model.Review) gin.H {
	return gin.H{
		"id":          review.ID,
		"product_id":  review.ProductID,
		"rating":      review.Rating,
		"comment":     review.Comment,
		"is_approved": review.IsApproved,
		"author":      review.User.Name,
		"created_at":  review.CreatedAt,
	}
}

// GET /api/v1/products/:id/reviews
func (ctrl *ReviewController) ListProductReviews(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reviews, err := ctrl.reviewService.GetProductReviews(productID)
	if err != nil {
		respondError(c, err, "list reviews")
		return
	}

	bodies := make([]gin.H, 0, len(reviews))
	for i := range reviews {
		bodies = append(bodies, reviewBody(&reviews[i]))
	}
	c.JSON(http.StatusOK, gin.H{"reviews": bodies, "count": len(bodies)})
}

// CreateReview stores a review awaiting moderation
// POST /api/v1/products/:id/reviews
func (ctrl *ReviewController) CreateReview(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := ctrl.reviewService.AddReview(userID, productID, req.Rating, req.Comment)
	if err != nil {
		respondError(c, err, "create review")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thanks! Your review will appear once approved",
		"review":  reviewBody(review),
	})
}

// PUT /api/v1/admin/reviews/:id/approve
func (ctrl *ReviewController) ApproveReview(c *gin.Context) {
	reviewID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	review, err := ctrl.reviewService.ApproveReview(reviewID)
	if err != nil {
		respondError(c, err, "approve review")
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": reviewBody(review)})
}
