package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	"github.com/rhinoeg/rhino-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type nopPublisher struct{}

func (nopPublisher) SendToUser(uint, interface{}) error { return nil }

type controllerEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	user     *model.User
	category *model.Category
	carts    service.CartService
	orders   service.OrderService
}

func setupControllerTest(t *testing.T) *controllerEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	promoRepo := repository.NewPromoCodeRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	env := &controllerEnv{db: testDB}
	env.carts = service.NewCartService(testDB, cartRepo, productRepo, promoRepo, service.DefaultMaxAttempts)
	env.orders = service.NewOrderService(testDB, orderRepo, cartRepo, promoRepo, nopPublisher{}, service.DefaultMaxAttempts)

	env.user = &model.User{Email: "test@example.com", PasswordHash: "hash", Name: "Test User", Role: model.RoleUser}
	require.NoError(t, testDB.Create(env.user).Error)
	env.category = &model.Category{Name: "Anime", Slug: "anime", IsActive: true}
	require.NoError(t, testDB.Create(env.category).Error)

	gin.SetMode(gin.TestMode)
	env.router = gin.New()
	return env
}

// asUser wraps a handler so it runs as if Authenticate had accepted userID
func asUser(userID uint, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		setUserIDInContext(c, userID)
		handler(c)
	}
}

func setUserIDInContext(c *gin.Context, userID uint) {
	c.Set("user_id", userID)
}

func (e *controllerEnv) product(t *testing.T, name string, size model.PrintSize, framed bool) *model.Product {
	product := &model.Product{
		CategoryID: e.category.ID,
		Name:       name,
		Slug:       strings.ReplaceAll(strings.ToLower(name), " ", "-"),
		Size:       size,
		Framed:     framed,
		IsActive:   true,
		InStock:    true,
	}
	require.NoError(t, e.db.Create(product).Error)
	return product
}

func (e *controllerEnv) promo(t *testing.T, code string, kind model.DiscountType, value string) *model.PromoCode {
	promo := &model.PromoCode{
		Code:           code,
		DiscountType:   kind,
		DiscountValue:  decimal.RequireFromString(value),
		MinOrderAmount: decimal.Zero,
		IsActive:       true,
		ValidFrom:      time.Now().Add(-time.Hour),
		ValidUntil:     time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, e.db.Create(promo).Error)
	return promo
}

func (e *controllerEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	return e.serve(t, newJSONRequest(t, method, path, body))
}

func (e *controllerEnv) doWithHeader(t *testing.T, method, path, header, value string) *httptest.ResponseRecorder {
	req := newJSONRequest(t, method, path, nil)
	req.Header.Set(header, value)
	return e.serve(t, req)
}

func (e *controllerEnv) serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func newJSONRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	data := []byte{}
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	require.Equal(t, code, decodeBody(t, w)["error"])
}
