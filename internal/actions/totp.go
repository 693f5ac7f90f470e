package actions

import (
	"time"

	"github.com/pquerna/otp/totp"
)

// GenerateTOTP returns the current TOTP code for a base32-encoded secret,
// used by the sensitive-data substitution path when a placeholder name
// contains the two-factor marker (a TOTP code is generated when the
// placeholder name contains the two-factor marker").
func GenerateTOTP(secret string) (string, error) {
	return totp.GenerateCode(secret, time.Now())
}
