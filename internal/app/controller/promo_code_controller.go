package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	"github.com/rhinoeg/rhino-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

// PromoCodeController serves the admin promo code endpoints
type PromoCodeController struct {
	promoService service.PromoCodeService
	clock        func() time.Time
}

func NewPromoCodeController(promoService service.PromoCodeService) *PromoCodeController {
	return &PromoCodeController{
		promoService: promoService,
		clock:        time.Now,
	}
}

type CreatePromoCodeRequest struct {
	Code           string             `json:"code" binding:"required"`
	Description    string             `json:"description"`
	DiscountType   model.DiscountType `json:"discount_type" binding:"required"`
	DiscountValue  decimal.Decimal    `json:"discount_value"`
	MinOrderAmount decimal.Decimal    `json:"min_order_amount"`
	MaxUses        int                `json:"max_uses"`
	IsActive       *bool              `json:"is_active"`
	ValidFrom      time.Time          `json:"valid_from" binding:"required"`
	ValidUntil     time.Time          `json:"valid_until" binding:"required"`
}

type SetPromoActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func (ctrl *PromoCodeController) promoBody(promo *model.PromoCode) gin.H {
	return gin.H{
		"id":               promo.ID,
		"code":             promo.Code,
		"label":            promo.Label(),
		"description":      promo.Description,
		"discount_type":    promo.DiscountType,
		"discount_value":   promo.DiscountValue.StringFixed(2),
		"min_order_amount": promo.MinOrderAmount.StringFixed(2),
		"max_uses":         promo.MaxUses,
		"used_count":       promo.UsedCount,
		"is_active":        promo.IsActive,
		"is_valid":         promo.IsValid(ctrl.clock()),
		"is_exhausted":     promo.IsExhausted(),
		"valid_from":       promo.ValidFrom,
		"valid_until":      promo.ValidUntil,
	}
}

// GET /api/v1/admin/promo-codes
func (ctrl *PromoCodeController) ListPromoCodes(c *gin.Context) {
	promos, err := ctrl.promoService.ListPromoCodes()
	if err != nil {
		respondError(c, err, "list promo codes")
		return
	}

	bodies := make([]gin.H, 0, len(promos))
	for i := range promos {
		bodies = append(bodies, ctrl.promoBody(&promos[i]))
	}
	c.JSON(http.StatusOK, gin.H{"promo_codes": bodies})
}

// CreatePromoCode creates a code; is_active defaults to true
// POST /api/v1/admin/promo-codes
func (ctrl *PromoCodeController) CreatePromoCode(c *gin.Context) {
	var req CreatePromoCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	promo, err := ctrl.promoService.CreatePromoCode(service.CreatePromoCodeInput{
		Code:           req.Code,
		Description:    req.Description,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		MinOrderAmount: req.MinOrderAmount,
		MaxUses:        req.MaxUses,
		IsActive:       active,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
	})
	if err != nil {
		respondError(c, err, "create promo code")
		return
	}

	adminID, _ := middleware.GetUserID(c)
	middleware.GetLoggerFromContext(c).Info("Promo code created", map[string]interface{}{
		"admin_id": adminID,
		"code":     promo.Code,
	})
	c.JSON(http.StatusCreated, gin.H{"promo_code": ctrl.promoBody(promo)})
}

// PUT /api/v1/admin/promo-codes/:id/active
func (ctrl *PromoCodeController) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetPromoActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.promoService.SetActive(id, *req.IsActive); err != nil {
		respondError(c, err, "update promo code")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": *req.IsActive})
}

// DeletePromoCode removes a code and detaches it from every cart
// DELETE /api/v1/admin/promo-codes/:id
func (ctrl *PromoCodeController) DeletePromoCode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.promoService.DeletePromoCode(id); err != nil {
		respondError(c, err, "delete promo code")
		return
	}

	c.Status(http.StatusNoContent)
}
