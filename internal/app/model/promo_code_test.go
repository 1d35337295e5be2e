package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestPromo(discountType DiscountType, value, minOrder string) *PromoCode {
	return &PromoCode{
		Code:           "TEST",
		DiscountType:   discountType,
		DiscountValue:  dec(value),
		MinOrderAmount: dec(minOrder),
		IsActive:       true,
		ValidFrom:      testNow.Add(-24 * time.Hour),
		ValidUntil:     testNow.Add(24 * time.Hour),
	}
}

func TestPromoCode_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *PromoCode)
		want   bool
	}{
		{
			name:   "active within window",
			modify: func(p *PromoCode) {},
			want:   true,
		},
		{
			name:   "inactive",
			modify: func(p *PromoCode) { p.IsActive = false },
			want:   false,
		},
		{
			name:   "not started yet",
			modify: func(p *PromoCode) { p.ValidFrom = testNow.Add(time.Minute) },
			want:   false,
		},
		{
			name:   "already ended",
			modify: func(p *PromoCode) { p.ValidUntil = testNow.Add(-time.Minute) },
			want:   false,
		},
		{
			name:   "window boundaries are inclusive",
			modify: func(p *PromoCode) { p.ValidFrom = testNow; p.ValidUntil = testNow },
			want:   true,
		},
		{
			name:   "unlimited uses",
			modify: func(p *PromoCode) { p.MaxUses = 0; p.UsedCount = 1000 },
			want:   true,
		},
		{
			name:   "uses remaining",
			modify: func(p *PromoCode) { p.MaxUses = 10; p.UsedCount = 9 },
			want:   true,
		},
		{
			name:   "cap reached",
			modify: func(p *PromoCode) { p.MaxUses = 1; p.UsedCount = 1 },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := newTestPromo(DiscountPercentage, "10", "0")
			tt.modify(promo)
			assert.Equal(t, tt.want, promo.IsValid(testNow))
		})
	}
}

func TestPromoCode_IsValid_Nil(t *testing.T) {
	var promo *PromoCode
	assert.False(t, promo.IsValid(testNow))
}

func TestPromoCode_CalculateDiscount(t *testing.T) {
	tests := []struct {
		name         string
		discountType DiscountType
		value        string
		minOrder     string
		orderTotal   string
		want         string
	}{
		{"percentage below minimum", DiscountPercentage, "20", "100", "60.00", "0"},
		{"percentage at minimum", DiscountPercentage, "20", "100", "100.00", "20.00"},
		{"percentage above minimum", DiscountPercentage, "20", "100", "120.00", "24.00"},
		{"percentage rounds half up", DiscountPercentage, "10", "0", "10.05", "1.01"},
		{"percentage rounds to nearest cent", DiscountPercentage, "15", "0", "33.33", "5.00"},
		{"percentage over 100 clamps to total", DiscountPercentage, "150", "0", "40.00", "40.00"},
		{"fixed below total", DiscountFixed, "15", "0", "50.00", "15.00"},
		{"fixed capped at total", DiscountFixed, "15", "0", "10.00", "10.00"},
		{"fixed below minimum", DiscountFixed, "15", "50", "49.99", "0"},
		{"zero total", DiscountFixed, "15", "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := newTestPromo(tt.discountType, tt.value, tt.minOrder)
			got := promo.CalculateDiscount(dec(tt.orderTotal))
			assert.True(t, dec(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestPromoCode_CalculateDiscount_FixedNeverExceedsTotal(t *testing.T) {
	promo := newTestPromo(DiscountFixed, "200", "0")
	for cents := int64(0); cents <= 50000; cents += 137 {
		total := decimal.New(cents, -2)
		discount := promo.CalculateDiscount(total)
		assert.True(t, discount.LessThanOrEqual(total), "discount %s exceeds total %s", discount, total)
		assert.False(t, discount.IsNegative())
	}
}

func TestPromoCode_CalculateDiscount_PercentageMatchesRoundedProduct(t *testing.T) {
	for _, value := range []string{"5", "10", "12.5", "20", "25", "33"} {
		promo := newTestPromo(DiscountPercentage, value, "0")
		for cents := int64(1); cents <= 30000; cents += 311 {
			total := decimal.New(cents, -2)
			want := total.Mul(dec(value)).Div(decimal.NewFromInt(100)).Round(2)
			assert.True(t, want.Equal(promo.CalculateDiscount(total)), "value %s total %s", value, total)
		}
	}
}

func TestPromoCode_CalculateDiscount_FixedIsRoundedToo(t *testing.T) {
	promo := newTestPromo(DiscountFixed, "10.005", "0")
	assert.True(t, dec("10.01").Equal(promo.CalculateDiscount(dec("50.00"))))

	capped := newTestPromo(DiscountFixed, "15", "0")
	assert.True(t, dec("9.99").Equal(capped.CalculateDiscount(dec("9.99"))))
}

func TestNormalizePromoCode(t *testing.T) {
	assert.Equal(t, "SAVE20", NormalizePromoCode("  save20 "))
	assert.Equal(t, "", NormalizePromoCode("   "))
}

func TestPromoCode_Label(t *testing.T) {
	assert.Equal(t, "SAVE20 (20% off)", (&PromoCode{Code: "SAVE20", DiscountType: DiscountPercentage, DiscountValue: dec("20")}).Label())
	assert.Equal(t, "FREESHIP (15.00 LE off)", (&PromoCode{Code: "FREESHIP", DiscountType: DiscountFixed, DiscountValue: dec("15")}).Label())
}

func TestPromoCode_IsExhausted(t *testing.T) {
	promo := newTestPromo(DiscountFixed, "10", "0")
	assert.False(t, promo.IsExhausted())

	promo.UsedCount = 1000
	assert.False(t, promo.IsExhausted(), "max_uses 0 is unlimited")

	promo.MaxUses = 3
	promo.UsedCount = 2
	assert.False(t, promo.IsExhausted())

	promo.UsedCount = 3
	assert.True(t, promo.IsExhausted())
	assert.False(t, promo.IsValid(testNow))
}
