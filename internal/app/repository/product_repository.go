package repository

import (
	"strings"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductFilter narrows the catalog listing. Only active products are listed.
type ProductFilter struct {
	CategorySlug string
	Search       string
	Featured     *bool
	Limit        int
	Offset       int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindCategories() ([]model.Category, error)
	UpdateRating(id uint, rating decimal.Decimal) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category": filter.CategorySlug,
		"search":   filter.Search,
		"featured": filter.Featured,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	query := r.db.Model(&model.Product{}).Where("products.is_active = ?", true)

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	if filter.Featured != nil {
		query = query.Where("products.featured = ?", *filter.Featured)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Preload("Category").Order("products.id ASC").Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		logger.Debug("Product not found by ID", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Category").Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindCategories() ([]model.Category, error) {
	var categories []model.Category
	err := r.db.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

func (r *productRepository) UpdateRating(id uint, rating decimal.Decimal) error {
	logger.Debug("Updating product rating in database", map[string]interface{}{
		"product_id": id,
		"rating":     rating.String(),
	})

	err := r.db.Model(&model.Product{}).Where("id = ?", id).Update("rating", rating).Error
	if err != nil {
		logger.Error("Failed to update product rating", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}
