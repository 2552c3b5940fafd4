package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is the user-facing fallback for internal failures.
	SystemErrorMessage = "internal server error"
	// StorageErrorMessage describes key-value storage failures.
	StorageErrorMessage = "storage operation failed"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// PostgresErrorMessage describes Postgres related failures.
	PostgresErrorMessage = "postgres operation failed"
)

// AppError wraps an underlying error with an HTTP status and a safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// WrapRedis tags a Redis failure as a bad gateway.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapPostgres tags a Postgres failure as a bad gateway.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusBadGateway, PostgresErrorMessage)
}

// WrapStorage is used by stores that cannot name their backend.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, StorageErrorMessage)
}

// StatusOf returns the status carried by the first AppError in err's chain.
func StatusOf(err error) (int, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status, true
	}
	return 0, false
}
