package db

import (
	"bytes"
	"testing"

	"github.com/rhinoeg/rhino-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []interface{}{"Category", "Name", "Description", "Size", "Framed", "Featured", "Image URL"}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Spirited Away Poster": "spirited-away-poster",
		"  Al-Ahly  Crest! ":   "al-ahly-crest",
		"Mo Salah #11":         "mo-salah-11",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestReadProductRows(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Anime", "Totoro", "Forest spirit", "a3", "yes", "no"},
		{"Anime", "Totoro", "", "A4", "", ""},
		{"", "No Category", "", "A4"},
		{"Movies", "Bad Size", "", "B1"},
		{"Movies"},
	})

	rows, summary, err := ReadProductRows(buf)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Rows)
	assert.Equal(t, 3, summary.Skipped)
	require.Len(t, rows, 2)

	assert.Equal(t, "totoro", rows[0].Slug)
	assert.Equal(t, model.SizeA3, rows[0].Size)
	assert.True(t, rows[0].Framed)
	assert.False(t, rows[0].Featured)
	assert.Equal(t, "totoro-2", rows[1].Slug)
}

func TestReadProductRows_Empty(t *testing.T) {
	_, _, err := ReadProductRows(buildWorkbook(t, nil))
	assert.Error(t, err)

	_, _, err = ReadProductRows(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestImportProducts(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	rows, summary, err := ReadProductRows(buildWorkbook(t, [][]interface{}{
		{"Anime", "Totoro", "Forest spirit", "A3", "true", "1"},
		{"Football", "Salah", "", "A5", "", ""},
	}))
	require.NoError(t, err)
	require.NoError(t, ImportProducts(testDB, rows, summary))
	assert.Equal(t, 2, summary.Created)

	var product model.Product
	require.NoError(t, testDB.Preload("Category").Where("slug = ?", "totoro").First(&product).Error)
	assert.Equal(t, "anime", product.Category.Slug)
	assert.True(t, product.Featured)
	assert.True(t, model.FinalPrice(model.SizeA3, true).Equal(product.FinalPrice()))

	again := &ImportSummary{}
	require.NoError(t, ImportProducts(testDB, rows, again))
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 2, again.Existing)

	var categories int64
	require.NoError(t, testDB.Model(&model.Category{}).Count(&categories).Error)
	assert.Equal(t, int64(2), categories)
}
