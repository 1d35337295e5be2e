package errors

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorInfo is a code and message safe to show to a client
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a raw persistence error onto a client-safe code and message.
// context names the resource involved ("cart", "order", ...) and only shapes
// the wording.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorInfo{Code: ResourceNotFound, Message: getNotFoundMessage(context)}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return parseDuplicateKeyError(err.Error())
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrorInfo{Code: ResourceConflict, Message: "The record is referenced by other data"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return parseDuplicateKeyError(pgErr.ConstraintName + " " + pgErr.Message)
		case pgerrcode.ForeignKeyViolation:
			return ErrorInfo{Code: ResourceConflict, Message: "The record is referenced by other data"}
		case pgerrcode.NotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
		case pgerrcode.CheckViolation:
			return ErrorInfo{Code: ValidationInvalidInput, Message: "One of the values is out of range"}
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return ErrorInfo{Code: ResourceConflict, Message: "The request conflicted with another update. Please try again"}
		}
		return ErrorInfo{Code: InternalDatabaseError, Message: getDefaultErrorMessage(context)}
	}

	errLower := strings.ToLower(err.Error())
	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unreachable. Please try again shortly",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

func parseDuplicateKeyError(detail string) ErrorInfo {
	detail = strings.ToLower(detail)

	switch {
	case strings.Contains(detail, "email"):
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "This email is already registered"}
	case strings.Contains(detail, "promo_codes") || strings.Contains(detail, "code"):
		return ErrorInfo{Code: PromoAlreadyExists, Message: "A promo code with this name already exists"}
	case strings.Contains(detail, "reviews"):
		return ErrorInfo{Code: ReviewAlreadyExists, Message: "You have already reviewed this product"}
	case strings.Contains(detail, "slug"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This slug is already in use"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "cart"):
		return "Cart item not found"
	case strings.Contains(contextLower, "order"):
		return "Order not found"
	case strings.Contains(contextLower, "promo"):
		return "Promo code not found"
	case strings.Contains(contextLower, "review"):
		return "Review not found"
	case strings.Contains(contextLower, "design"):
		return "Design not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	}
	return "The requested resource was not found"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not create the record. Please try again later"
	case strings.Contains(contextLower, "update"):
		return "Could not update the record. Please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Could not delete the record. Please try again later"
	case strings.Contains(contextLower, "checkout"):
		return "Checkout failed. Please try again later"
	}
	return "Something went wrong. Please try again later"
}

// ParseAndRespond parses err and writes it with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
