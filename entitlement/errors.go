package entitlement

import (
	"errors"
	"fmt"
)

// Lookup failures are real errors, distinct from a denied Decision. The
// route layer maps them to 404.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrVideoNotFound = errors.New("video not found")
)

// ValidationError reports malformed progress input. The route layer maps
// it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
