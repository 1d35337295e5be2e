package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
	clock       func() time.Time
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
		clock:       time.Now,
	}
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type ApplyPromoRequest struct {
	Code string `json:"code"`
}

// GetCart returns the cart with its totals, creating an empty one if needed
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err, "get cart")
		return
	}

	c.JSON(http.StatusOK, cartBody(cart, ctrl.clock()))
}

// AddItem adds a catalog product; quantity defaults to 1 when omitted
// POST /api/v1/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := ctrl.cartService.AddCatalogItem(userID, req.ProductID, quantity)
	if err != nil {
		respondError(c, err, "add cart item")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Item added to cart", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   quantity,
	})
	c.JSON(http.StatusOK, cartBody(cart, ctrl.clock()))
}

// UpdateItem sets a line's quantity
// PUT /api/v1/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err, "update cart item")
		return
	}

	c.JSON(http.StatusOK, cartBody(cart, ctrl.clock()))
}

// DELETE /api/v1/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(userID, itemID)
	if err != nil {
		respondError(c, err, "remove cart item")
		return
	}

	c.JSON(http.StatusOK, cartBody(cart, ctrl.clock()))
}

// ClearCart removes every line and any attached promo code
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.ClearCart(userID)
	if err != nil {
		respondError(c, err, "clear cart")
		return
	}

	c.JSON(http.StatusOK, cartBody(cart, ctrl.clock()))
}

// ApplyPromo attaches a promo code. Rejections answer 400 with the current
// totals so the client can keep showing them.
// POST /api/v1/cart/promo
func (ctrl *CartController) ApplyPromo(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ApplyPromoRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := ctrl.cartService.ApplyPromoCode(userID, req.Code)
	if err != nil {
		if !isPromoRejection(err) {
			respondError(c, err, "apply promo code")
			return
		}

		body := gin.H{
			"success": false,
			"error":   errorCode(err),
			"message": errorMessage(err),
		}
		if current, getErr := ctrl.cartService.GetCart(userID); getErr == nil {
			summary := current.Summary(ctrl.clock())
			body["subtotal"] = summary.Subtotal.StringFixed(2)
			body["discount"] = summary.Discount.StringFixed(2)
			body["total"] = summary.Total.StringFixed(2)
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	summary := cart.Summary(ctrl.clock())
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Promo code applied",
		"subtotal":         summary.Subtotal.StringFixed(2),
		"discount":         summary.Discount.StringFixed(2),
		"total":            summary.Total.StringFixed(2),
		"promo_code_label": summary.PromoCode,
	})
}

func isPromoRejection(err error) bool {
	for _, target := range []error{
		service.ErrPromoCodeRequired,
		service.ErrInvalidPromoCode,
		service.ErrPromoCodeExpiredOrInactive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RemovePromo detaches the promo code; removing when none is attached succeeds
// DELETE /api/v1/cart/promo
func (ctrl *CartController) RemovePromo(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemovePromoCode(userID)
	if err != nil {
		respondError(c, err, "remove promo code")
		return
	}

	summary := cart.Summary(ctrl.clock())
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Promo code removed",
		"subtotal": summary.Subtotal.StringFixed(2),
		"discount": summary.Discount.StringFixed(2),
		"total":    summary.Total.StringFixed(2),
	})
}
