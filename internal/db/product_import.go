package db

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Column order of a product import sheet. The first row is a header.
const (
	colCategory = iota
	colName
	colDescription
	colSize
	colFramed
	colFeatured
	colImageURL
	minImportColumns = colSize + 1
)

var (
	nonSlugChars  = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	repeatHyphens = regexp.MustCompile(`-+`)
)

// ProductRow is one product read from an import sheet
type ProductRow struct {
	Category    string
	Name        string
	Slug        string
	Description string
	Size        model.PrintSize
	Framed      bool
	Featured    bool
	ImageURL    string
}

// ImportSummary counts the outcome of reading and importing a sheet
type ImportSummary struct {
	Rows     int
	Skipped  int
	Created  int
	Existing int
}

// Slugify lower-cases s and joins its letters and digits with hyphens
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.TrimSpace(s), "-")
	slug = repeatHyphens.ReplaceAllString(slug, "-")
	return strings.ToLower(strings.Trim(slug, "-"))
}

// ReadProductRows parses the first sheet of an xlsx workbook. Rows without a
// category or name, or with an unknown print size, are skipped.
func ReadProductRows(r io.Reader) ([]ProductRow, *ImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, errors.New("workbook has no product rows")
	}

	summary := &ImportSummary{Rows: len(rows) - 1}
	products := make([]ProductRow, 0, len(rows)-1)
	slugCounter := make(map[string]int)

	for i, row := range rows[1:] {
		if len(row) < minImportColumns {
			summary.Skipped++
			continue
		}

		category := strings.TrimSpace(row[colCategory])
		name := strings.TrimSpace(row[colName])
		size, ok := model.ParsePrintSize(row[colSize])
		if category == "" || name == "" || !ok {
			logger.Debug("Skipping product row", map[string]interface{}{
				"row":  i + 2,
				"name": name,
			})
			summary.Skipped++
			continue
		}

		slug := Slugify(name)
		if n := slugCounter[slug]; n > 0 {
			slugCounter[slug] = n + 1
			slug = fmt.Sprintf("%s-%d", slug, n+1)
		} else {
			slugCounter[slug] = 1
		}

		products = append(products, ProductRow{
			Category:    category,
			Name:        name,
			Slug:        slug,
			Description: cell(row, colDescription),
			Size:        size,
			Framed:      parseFlag(cell(row, colFramed)),
			Featured:    parseFlag(cell(row, colFeatured)),
			ImageURL:    cell(row, colImageURL),
		})
	}

	return products, summary, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFlag accepts true/false, 1/0 and yes/no
func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// ImportProducts creates missing categories and products in one transaction.
// Products whose slug already exists are left untouched.
func ImportProducts(db *gorm.DB, rows []ProductRow, summary *ImportSummary) error {
	return db.Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]uint)

		for _, row := range rows {
			categorySlug := Slugify(row.Category)
			categoryID, ok := categories[categorySlug]
			if !ok {
				category := model.Category{Name: row.Category, Slug: categorySlug, IsActive: true}
				if err := tx.Where("slug = ?", categorySlug).FirstOrCreate(&category).Error; err != nil {
					return fmt.Errorf("failed to upsert category %q: %w", row.Category, err)
				}
				categoryID = category.ID
				categories[categorySlug] = categoryID
			}

			var existing int64
			if err := tx.Model(&model.Product{}).Where("slug = ?", row.Slug).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				summary.Existing++
				continue
			}

			product := model.Product{
				CategoryID:  categoryID,
				Name:        row.Name,
				Slug:        row.Slug,
				Description: row.Description,
				Size:        row.Size,
				Framed:      row.Framed,
				Featured:    row.Featured,
				ImageURL:    row.ImageURL,
				IsActive:    true,
				InStock:     true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to create product %q: %w", row.Slug, err)
			}
			summary.Created++
		}

		logger.Info("Products imported", map[string]interface{}{
			"created":  summary.Created,
			"existing": summary.Existing,
			"skipped":  summary.Skipped,
		})
		return nil
	})
}
