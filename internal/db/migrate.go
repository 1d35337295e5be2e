package db

import (
	"time"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Models lists every table in dependency order
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.CustomDesign{},
		&model.PromoCode{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
		&model.WishlistItem{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed inserts the starter catalog and promo codes when the tables are empty
func Seed() error {
	return SeedCatalog(DB, time.Now())
}

// SeedCatalog is idempotent: each section is skipped when rows already exist
func SeedCatalog(db *gorm.DB, now time.Time) error {
	logger.Info("Seeding initial data...")

	if err := seedCategoriesAndProducts(db); err != nil {
		logger.Error("Failed to seed catalog", err)
		return err
	}
	if err := seedPromoCodes(db, now); err != nil {
		logger.Error("Failed to seed promo codes", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

type seedProduct struct {
	name     string
	slug     string
	size     model.PrintSize
	framed   bool
	featured bool
}

func seedCategoriesAndProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	catalog := []struct {
		category model.Category
		products []seedProduct
	}{
		{
			category: model.Category{Name: "Anime", Slug: "anime", Description: "Anime and manga prints", IsActive: true},
			products: []seedProduct{
				{"Spirited Away Poster", "spirited-away-poster", model.SizeA4, false, true},
				{"Akira Neo Tokyo", "akira-neo-tokyo", model.SizeA3, true, false},
			},
		},
		{
			category: model.Category{Name: "Movies", Slug: "movies", Description: "Film posters", IsActive: true},
			products: []seedProduct{
				{"The Godfather", "the-godfather", model.SizeA3, false, true},
				{"Pulp Fiction", "pulp-fiction", model.SizeA5, false, false},
			},
		},
		{
			category: model.Category{Name: "Football", Slug: "football", Description: "Clubs and legends", IsActive: true},
			products: []seedProduct{
				{"Salah Celebration", "salah-celebration", model.SizeA4, true, true},
				{"Al Ahly Crest", "al-ahly-crest", model.SizeA5, true, false},
			},
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		inserted := 0
		for _, entry := range catalog {
			category := entry.category
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			for _, p := range entry.products {
				product := model.Product{
					CategoryID:  category.ID,
					Name:        p.name,
					Slug:        p.slug,
					Description: p.name + " print",
					Size:        p.size,
					Framed:      p.framed,
					Featured:    p.featured,
					IsActive:    true,
					InStock:     true,
				}
				if err := tx.Create(&product).Error; err != nil {
					logger.Error("Failed to create product", err, map[string]interface{}{
						"slug": p.slug,
					})
					return err
				}
				inserted++
			}
		}

		logger.Info("Catalog seeded successfully", map[string]interface{}{
			"categories": len(catalog),
			"products":   inserted,
		})
		return nil
	})
}

func seedPromoCodes(db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.Model(&model.PromoCode{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Promo codes already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	validFrom := now.Add(-time.Hour)
	monthLater := now.AddDate(0, 1, 0)
	promos := []model.PromoCode{
		{Code: "WELCOME10", Description: "10% off your first order", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(10), MinOrderAmount: decimal.NewFromInt(50), MaxUses: 100, ValidUntil: monthLater},
		{Code: "SAVE20", Description: "20% off orders over 100 LE", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(20), MinOrderAmount: decimal.NewFromInt(100), MaxUses: 50, ValidUntil: monthLater},
		{Code: "FREESHIP", Description: "15 LE off any order", DiscountType: model.DiscountFixed, DiscountValue: decimal.NewFromInt(15), MinOrderAmount: decimal.Zero, MaxUses: 200, ValidUntil: monthLater},
		{Code: "FLASH25", Description: "Flash sale 25% off", DiscountType: model.DiscountPercentage, DiscountValue: decimal.NewFromInt(25), MinOrderAmount: decimal.NewFromInt(75), MaxUses: 25, ValidUntil: now.AddDate(0, 0, 7)},
	}
	for i := range promos {
		promos[i].IsActive = true
		promos[i].ValidFrom = validFrom
	}

	if err := db.Create(&promos).Error; err != nil {
		return err
	}

	logger.Info("Promo codes seeded successfully", map[string]interface{}{
		"total": len(promos),
	})
	return nil
}
