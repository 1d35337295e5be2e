package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rhinoeg/rhino-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrConcurrencyConflict is returned once a transaction keeps colliding with
// concurrent writers after every allowed attempt.
var ErrConcurrencyConflict = errors.New("concurrent update conflict, please retry")

// DefaultMaxAttempts is used when a service is built without a retry budget
const DefaultMaxAttempts = 3

func isRetryableConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return true
		}
	}
	return false
}

// withRetry runs fn up to attempts times while it fails with a retryable
// conflict. Other errors are returned unchanged.
func withRetry(attempts int, operation string, fn func() error) error {
	if attempts < 1 {
		attempts = DefaultMaxAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !isRetryableConflict(err) {
			return err
		}
		logger.Warn("Retrying after concurrent update conflict", map[string]interface{}{
			"operation": operation,
			"attempt":   attempt,
			"error":     err.Error(),
		})
	}

	logger.Error("Giving up after concurrent update conflicts", err, map[string]interface{}{
		"operation": operation,
		"attempts":  attempts,
	})
	return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
}
