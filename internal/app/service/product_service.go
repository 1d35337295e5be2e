package service

import (
	"errors"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProductListResult is one page of the catalog
type ProductListResult struct {
	Products []model.Product `json:"products"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

type ProductService interface {
	ListProducts(filter repository.ProductFilter) (*ProductListResult, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	ListCategories() ([]model.Category, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) ListProducts(filter repository.ProductFilter) (*ProductListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{
		Products: products,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}, nil
}

// inactive products are hidden from the storefront
func visibleProduct(product *model.Product, err error) (*model.Product, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	return visibleProduct(s.productRepo.FindByID(id))
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	return visibleProduct(s.productRepo.FindBySlug(slug))
}

func (s *productService) ListCategories() ([]model.Category, error) {
	return s.productRepo.FindCategories()
}
