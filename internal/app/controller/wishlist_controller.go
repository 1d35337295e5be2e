package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
)

type WishlistController struct {
	wishlistService service.WishlistService
}

func NewWishlistController(wishlistService service.WishlistService) *WishlistController {
	return &WishlistController{
		wishlistService: wishlistService,
	}
}

type AddToWishlistRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

func wishlistItemBody(item *model.WishlistItem) gin.H {
	return gin.H{
		"id":         item.ID,
		"product":    productBody(&item.Product),
		"created_at": item.CreatedAt,
	}
}

// GET /api/v1/wishlist
func (ctrl *WishlistController) GetWishlist(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	items, err := ctrl.wishlistService.GetUserWishlist(userID)
	if err != nil {
		respondError(c, err, "get wishlist")
		return
	}

	bodies := make([]gin.H, 0, len(items))
	for i := range items {
		bodies = append(bodies, wishlistItemBody(&items[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"wishlist_items": bodies,
		"count":          len(bodies),
	})
}

// POST /api/v1/wishlist
func (ctrl *WishlistController) AddToWishlist(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddToWishlistRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := ctrl.wishlistService.AddToWishlist(userID, req.ProductID)
	if err != nil {
		respondError(c, err, "add to wishlist")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"wishlist_item": wishlistItemBody(item)})
}

// DELETE /api/v1/wishlist/:product_id
func (ctrl *WishlistController) RemoveFromWishlist(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	if err := ctrl.wishlistService.RemoveFromWishlist(userID, productID); err != nil {
		respondError(c, err, "remove from wishlist")
		return
	}

	c.Status(http.StatusNoContent)
}
