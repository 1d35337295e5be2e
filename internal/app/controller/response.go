package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
	"github.com/rhinoeg/rhino-backend/pkg/util"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings translates service sentinels into responses. Not-found
// messages are generic so they never reveal another user's resources.
var errorMappings = []errorMapping{
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Quantity must be at least 1"},
	{service.ErrInvalidCheckoutInput, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Shipping address and phone are required"},
	{service.ErrInvalidPromoCodeInput, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Promo code settings are invalid"},
	{service.ErrInvalidOrderStatus, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Unknown order status"},
	{service.ErrInvalidDesignSize, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Unsupported print size"},
	{service.ErrInvalidDesignFile, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Design file reference is invalid"},
	{util.ErrPasswordTooShort, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Password must be at least 8 characters"},
	{service.ErrInvalidDesignFileType, http.StatusBadRequest, apperrors.DesignInvalidFileType, "Only JPEG, PNG and PDF files are accepted"},
	{service.ErrInvalidRating, http.StatusBadRequest, apperrors.ReviewInvalidRating, "Rating must be between 1 and 5"},
	{service.ErrProductUnavailable, http.StatusBadRequest, apperrors.ProductUnavailable, "This product is currently unavailable"},
	{service.ErrPromoCodeRequired, http.StatusBadRequest, apperrors.PromoRequired, "Please enter a promo code"},
	{service.ErrInvalidPromoCode, http.StatusBadRequest, apperrors.PromoInvalid, "Invalid promo code"},
	{service.ErrPromoCodeExpiredOrInactive, http.StatusBadRequest, apperrors.PromoExpiredOrInactive, "This promo code is expired or inactive"},
	{service.ErrEmptyCart, http.StatusBadRequest, apperrors.CartEmpty, "Your cart is empty"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password"},

	{service.ErrCartItemNotFound, http.StatusNotFound, apperrors.CartItemNotFound, "Cart item not found"},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "Order not found"},
	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound, "Product not found"},
	{service.ErrDesignNotFound, http.StatusNotFound, apperrors.DesignNotFound, "Design not found"},
	{service.ErrReviewNotFound, http.StatusNotFound, apperrors.ReviewNotFound, "Review not found"},
	{service.ErrPromoCodeNotFound, http.StatusNotFound, apperrors.PromoNotFound, "Promo code not found"},
	{service.ErrWishlistItemNotFound, http.StatusNotFound, apperrors.WishlistItemNotFound, "Product is not in your wishlist"},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "User not found"},

	{service.ErrPromoCodeExhausted, http.StatusConflict, apperrors.PromoExhausted, "This promo code has reached its usage limit. Remove it and try again"},
	{service.ErrInvalidStatusTransition, http.StatusConflict, apperrors.OrderInvalidTransition, "The order cannot move to that status"},
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists, "This email is already registered"},
	{service.ErrPromoCodeExists, http.StatusConflict, apperrors.PromoAlreadyExists, "A promo code with this name already exists"},
	{service.ErrReviewAlreadyExists, http.StatusConflict, apperrors.ReviewAlreadyExists, "You have already reviewed this product"},
	{service.ErrWishlistItemAlreadyExists, http.StatusConflict, apperrors.WishlistItemExists, "Product is already in your wishlist"},
	{service.ErrConcurrencyConflict, http.StatusConflict, apperrors.ResourceConflict, "Your request conflicted with another update. Please try again"},

	{service.ErrStorageUnavailable, http.StatusServiceUnavailable, apperrors.InternalExternalAPI, "File uploads are not available right now"},
}

// respondError writes the response for err. Errors without a mapping are
// logged and parsed as persistence failures.
func respondError(c *gin.Context, err error, action string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			apperrors.RespondWithError(c, m.status, m.code, m.message)
			return
		}
	}

	middleware.GetLoggerFromContext(c).Error("Request failed", err, map[string]interface{}{
		"action": action,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
}

// errorCode returns the response code respondError would use for err
func errorCode(err error) string {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.code
		}
	}
	return apperrors.InternalServerError
}

func errorMessage(err error) string {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.message
		}
	}
	return "Something went wrong. Please try again later"
}

// parseIDParam reads a positive numeric path parameter, writing a 400 when it
// is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
	}
	return userID, ok
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Request body is invalid")
		return false
	}
	return true
}

func cartItemBody(item model.CartItem) gin.H {
	return gin.H{
		"id":               item.ID,
		"product_id":       item.ProductID,
		"custom_design_id": item.CustomDesignID,
		"product_name":     item.ProductName,
		"quantity":         item.Quantity,
		"unit_price":       item.UnitPrice.StringFixed(2),
		"line_total":       item.LineTotal().StringFixed(2),
	}
}

// cartBody renders a cart with its derived totals as 2-place strings
func cartBody(cart *model.Cart, now time.Time) gin.H {
	summary := cart.Summary(now)
	items := make([]gin.H, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, cartItemBody(item))
	}

	body := gin.H{
		"items":      items,
		"subtotal":   summary.Subtotal.StringFixed(2),
		"discount":   summary.Discount.StringFixed(2),
		"total":      summary.Total.StringFixed(2),
		"item_count": summary.ItemCount,
	}
	if summary.PromoCode != "" {
		body["promo_code"] = summary.PromoCode
	}
	return body
}

func orderBody(order *model.Order) gin.H {
	items := make([]gin.H, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, gin.H{
			"id":               item.ID,
			"product_id":       item.ProductID,
			"custom_design_id": item.CustomDesignID,
			"product_name":     item.ProductName,
			"quantity":         item.Quantity,
			"unit_price":       item.UnitPrice.StringFixed(2),
			"line_total":       item.LineTotal().StringFixed(2),
		})
	}
	return gin.H{
		"id":               order.ID,
		"order_number":     order.OrderNumber,
		"status":           order.Status,
		"subtotal":         order.Subtotal.StringFixed(2),
		"discount":         order.DiscountAmount.StringFixed(2),
		"total":            order.TotalAmount.StringFixed(2),
		"promo_code":       order.PromoCode,
		"shipping_address": order.ShippingAddress,
		"phone":            order.Phone,
		"items":            items,
		"created_at":       order.CreatedAt,
	}
}
