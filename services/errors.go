package services

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvitationInvalid  = errors.New("invalid or expired invitation")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("admin privileges required")
)

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Msg: msg}
}

// isDuplicateKey recognises unique violations from every supported driver.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
