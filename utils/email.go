package utils

import (
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
)

// ValidateEmailAddress checks format and, outside development, that the
// domain can actually receive mail.
func ValidateEmailAddress(email string, checkMX bool) error {
	email = strings.TrimSpace(email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	if checkMX {
		if err := checkmail.ValidateHost(email); err != nil {
			return fmt.Errorf("email domain cannot receive mail")
		}
	}
	return nil
}
