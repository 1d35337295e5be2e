package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/db"
	"github.com/rhinoeg/rhino-backend/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db          *gorm.DB
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	promoRepo   repository.PromoCodeRepository
	orderRepo   repository.OrderRepository
	publisher   *recordingPublisher
	carts       CartService
	orders      OrderService
	promos      PromoCodeService
	category    *model.Category
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	env := &testEnv{
		db:          testDB,
		cartRepo:    repository.NewCartRepository(testDB),
		productRepo: repository.NewProductRepository(testDB),
		promoRepo:   repository.NewPromoCodeRepository(testDB),
		orderRepo:   repository.NewOrderRepository(testDB),
		publisher:   &recordingPublisher{},
	}
	env.carts = NewCartService(testDB, env.cartRepo, env.productRepo, env.promoRepo, DefaultMaxAttempts)
	env.orders = NewOrderService(testDB, env.orderRepo, env.cartRepo, env.promoRepo, env.publisher, DefaultMaxAttempts)
	env.promos = NewPromoCodeService(testDB, env.promoRepo, env.cartRepo)

	env.category = &model.Category{Name: "Anime", Slug: "anime", IsActive: true}
	require.NoError(t, testDB.Create(env.category).Error)
	return env
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

func (e *testEnv) product(t *testing.T, name string, size model.PrintSize, framed bool) *model.Product {
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

type promoOption func(*model.PromoCode)

func withMinOrder(amount string) promoOption {
	return func(p *model.PromoCode) { p.MinOrderAmount = decimal.RequireFromString(amount) }
}

func withUses(maxUses, usedCount int) promoOption {
	return func(p *model.PromoCode) {
		p.MaxUses = maxUses
		p.UsedCount = usedCount
	}
}

func withWindow(from, until time.Time) promoOption {
	return func(p *model.PromoCode) {
		p.ValidFrom = from
		p.ValidUntil = until
	}
}

func inactive() promoOption {
	return func(p *model.PromoCode) { p.IsActive = false }
}

func (e *testEnv) promo(t *testing.T, code string, kind model.DiscountType, value string, opts ...promoOption) *model.PromoCode {
	now := time.Now()
	promo := &model.PromoCode{
		Code:           code,
		DiscountType:   kind,
		DiscountValue:  decimal.RequireFromString(value),
		MinOrderAmount: decimal.Zero,
		IsActive:       true,
		ValidFrom:      now.Add(-time.Hour),
		ValidUntil:     now.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(promo)
	}
	require.NoError(t, e.db.Create(promo).Error)
	return promo
}

func (e *testEnv) reloadPromo(t *testing.T, id uint) *model.PromoCode {
	promo, err := e.promoRepo.FindByID(id)
	require.NoError(t, err)
	return promo
}

func (e *testEnv) countOrders(t *testing.T) int64 {
	var count int64
	require.NoError(t, e.db.Model(&model.Order{}).Count(&count).Error)
	return count
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []OrderEvent
}

func (p *recordingPublisher) SendToUser(userID uint, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event, ok := message.(OrderEvent); ok {
		p.events = append(p.events, event)
	}
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fakeUploader struct {
	keys []string
	err  error
}

func (f *fakeUploader) PresignUpload(_ context.Context, key, contentType string) (*storage.PresignedUpload, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.keys = append(f.keys, key)
	return &storage.PresignedUpload{
		UploadURL: fmt.Sprintf("https://uploads.test/%s?type=%s", key, contentType),
		FileURL:   f.FileURL(key),
		Key:       key,
	}, nil
}

func (f *fakeUploader) FileURL(key string) string {
	return "https://cdn.test/" + key
}
