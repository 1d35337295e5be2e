package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"Wrapped conflict", fmt.Errorf("%w: %v", service.ErrConcurrencyConflict, errors.New("deadlock")), http.StatusConflict, apperrors.ResourceConflict},
		{"Exhausted promo", service.ErrPromoCodeExhausted, http.StatusConflict, apperrors.PromoExhausted},
		{"Empty cart", service.ErrEmptyCart, http.StatusBadRequest, apperrors.CartEmpty},
		{"Expired promo", service.ErrPromoCodeExpiredOrInactive, http.StatusBadRequest, apperrors.PromoExpiredOrInactive},
		{"Raw not found", gorm.ErrRecordNotFound, http.StatusInternalServerError, apperrors.ResourceNotFound},
		{"Unknown", errors.New("boom"), http.StatusInternalServerError, apperrors.InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "test")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, raw := range []string{"0", "-1", "abc", "99999999999"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := parseIDParam(c, "id")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code, raw)
	}
}
