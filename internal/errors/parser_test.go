package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"nil error", nil, "cart", InternalServerError},
		{"record not found", gorm.ErrRecordNotFound, "order", ResourceNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), "product", ResourceNotFound},
		{"duplicated email", fmt.Errorf("idx_users_email: %w", gorm.ErrDuplicatedKey), "user create", AuthEmailAlreadyExists},
		{"foreign key", gorm.ErrForeignKeyViolated, "promo delete", ResourceConflict},
		{"pg unique on promo", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_promo_codes_code"}, "promo create", PromoAlreadyExists},
		{"pg serialization", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, "cart", ResourceConflict},
		{"pg other", &pgconn.PgError{Code: pgerrcode.DiskFull}, "checkout", InternalDatabaseError},
		{"network", fmt.Errorf("dial tcp: connection refused"), "cart", InternalExternalAPI},
		{"unknown", fmt.Errorf("boom"), "update order", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_NotFoundMessageFollowsContext(t *testing.T) {
	assert.Equal(t, "Order not found", ParseError(gorm.ErrRecordNotFound, "order").Message)
	assert.Equal(t, "Cart item not found", ParseError(gorm.ErrRecordNotFound, "cart item").Message)
	assert.Equal(t, "The requested resource was not found", ParseError(gorm.ErrRecordNotFound, "").Message)
}
