package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixtureNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func setupRepoTest(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createCategory(t *testing.T, testDB *gorm.DB, slug string) *model.Category {
	category := &model.Category{Name: slug, Slug: slug, IsActive: true}
	require.NoError(t, testDB.Create(category).Error)
	return category
}

func createProduct(t *testing.T, testDB *gorm.DB, category *model.Category, name string) *model.Product {
	product := &model.Product{
		CategoryID: category.ID,
		Name:       name,
		Slug:       fmt.Sprintf("%s-%s", category.Slug, strings.ReplaceAll(strings.ToLower(name), " ", "-")),
		Size:       model.SizeA4,
		IsActive:   true,
		InStock:    true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createPromo(t *testing.T, testDB *gorm.DB, code string, maxUses int) *model.PromoCode {
	promo := &model.PromoCode{
		Code:           code,
		DiscountType:   model.DiscountPercentage,
		DiscountValue:  decimal.NewFromInt(20),
		MinOrderAmount: decimal.Zero,
		MaxUses:        maxUses,
		IsActive:       true,
		ValidFrom:      fixtureNow.Add(-time.Hour),
		ValidUntil:     fixtureNow.Add(24 * time.Hour),
	}
	require.NoError(t, testDB.Create(promo).Error)
	return promo
}
