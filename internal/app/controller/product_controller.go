package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/internal/app/repository"
	"github.com/rhinoeg/rhino-backend/internal/app/service"
	apperrors "github.com/rhinoeg/rhino-backend/internal/errors"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

func productBody(product *model.Product) gin.H {
	return gin.H{
		"id":          product.ID,
		"name":        product.Name,
		"slug":        product.Slug,
		"description": product.Description,
		"size":        product.Size,
		"framed":      product.Framed,
		"price":       product.FinalPrice().StringFixed(2),
		"in_stock":    product.InStock,
		"featured":    product.Featured,
		"rating":      product.Rating.StringFixed(2),
		"image_url":   product.ImageURL,
		"category": gin.H{
			"id":   product.Category.ID,
			"name": product.Category.Name,
			"slug": product.Category.Slug,
		},
	}
}

// ListProducts lists active products
// GET /api/v1/products?category=&search=&featured=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		CategorySlug: c.Query("category"),
		Search:       c.Query("search"),
	}

	if raw := c.Query("featured"); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "featured must be true or false")
			return
		}
		filter.Featured = &featured
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be a number")
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "offset must be a number")
		return
	}

	result, err := ctrl.productService.ListProducts(filter)
	if err != nil {
		respondError(c, err, "list products")
		return
	}

	products := make([]gin.H, 0, len(result.Products))
	for i := range result.Products {
		products = append(products, productBody(&result.Products[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    result.Total,
		"limit":    result.Limit,
		"offset":   result.Offset,
	})
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

// GetProduct returns one active product
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		respondError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": productBody(product)})
}

// GET /api/v1/products/slug/:slug
func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	product, err := ctrl.productService.GetProductBySlug(c.Param("slug"))
	if err != nil {
		respondError(c, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": productBody(product)})
}

// GET /api/v1/categories
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories()
	if err != nil {
		respondError(c, err, "list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
