package controller

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPromoControllerTest(t *testing.T) *controllerEnv {
	env := setupControllerTest(t)
	promos := service.NewPromoCodeService(env.db, repository.NewPromoCodeRepository(env.db), repository.NewCartRepository(env.db))
	ctrl := NewPromoCodeController(promos)

	env.router.GET("/admin/promo-codes", ctrl.ListPromoCodes)
	env.router.POST("/admin/promo-codes", ctrl.CreatePromoCode)
	env.router.PUT("/admin/promo-codes/:id/active", ctrl.SetActive)
	env.router.DELETE("/admin/promo-codes/:id", ctrl.DeletePromoCode)
	return env
}

func promoRequest(code, kind, value string) map[string]interface{} {
	now := time.Now().UTC()
	return map[string]interface{}{
		"code":           code,
		"discount_type":  kind,
		"discount_value": value,
		"max_uses":       5,
		"valid_from":     now.Add(-time.Hour).Format(time.RFC3339),
		"valid_until":    now.Add(48 * time.Hour).Format(time.RFC3339),
	}
}

func TestPromoCodeController_Create(t *testing.T) {
	env := setupPromoControllerTest(t)

	w := env.do(t, http.MethodPost, "/admin/promo-codes", promoRequest("spring25", "percentage", "25"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	promo := decodeBody(t, w)["promo_code"].(map[string]interface{})
	assert.Equal(t, "SPRING25", promo["code"])
	assert.Equal(t, "25.00", promo["discount_value"])
	assert.Equal(t, true, promo["is_active"])
	assert.Equal(t, true, promo["is_valid"])
	assert.Equal(t, float64(0), promo["used_count"])
	assert.Equal(t, false, promo["is_exhausted"])

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
		wantCode   string
	}{
		{"Duplicate", promoRequest("SPRING25", "percentage", "10"), http.StatusConflict, apperrors.PromoAlreadyExists},
		{"Percentage over 100", promoRequest("BIG", "percentage", "150"), http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"Unknown type", promoRequest("ODD", "bogo", "1"), http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"Missing dates", map[string]interface{}{"code": "NODATE", "discount_type": "fixed", "discount_value": "5"}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/admin/promo-codes", tt.body)
			assertErrorCode(t, w, tt.wantStatus, tt.wantCode)
		})
	}
}

func TestPromoCodeController_ActivateListDelete(t *testing.T) {
	env := setupPromoControllerTest(t)
	promo := env.promo(t, "WELCOME", model.DiscountFixed, "15")
	path := fmt.Sprintf("/admin/promo-codes/%d", promo.ID)

	w := env.do(t, http.MethodPut, path+"/active", map[string]bool{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/admin/promo-codes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody(t, w)["promo_codes"].([]interface{})
	require.Len(t, listed, 1)
	assert.Equal(t, false, listed[0].(map[string]interface{})["is_active"])
	assert.Equal(t, "WELCOME (15.00 LE off)", listed[0].(map[string]interface{})["label"])

	w = env.do(t, http.MethodPut, path+"/active", map[string]string{})
	assertErrorCode(t, w, http.StatusBadRequest, apperrors.ValidationInvalidInput)

	w = env.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, path, nil)
	assertErrorCode(t, w, http.StatusNotFound, apperrors.PromoNotFound)

	w = env.do(t, http.MethodPut, path+"/active", map[string]bool{"is_active": true})
	assertErrorCode(t, w, http.StatusNotFound, apperrors.PromoNotFound)
}

func TestPromoCodeController_ListShowsExhausted(t *testing.T) {
	env := setupPromoControllerTest(t)
	promo := env.promo(t, "FLASH25", model.DiscountPercentage, "25")
	require.NoError(t, env.db.Model(promo).Updates(map[string]interface{}{"max_uses": 2, "used_count": 2}).Error)

	w := env.do(t, http.MethodGet, "/admin/promo-codes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody(t, w)["promo_codes"].([]interface{})
	require.Len(t, listed, 1)
	body := listed[0].(map[string]interface{})
	assert.Equal(t, true, body["is_exhausted"])
	assert.Equal(t, false, body["is_valid"])
	assert.Equal(t, true, body["is_active"])
}
