package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Israeli phone numbers: leading zero, 1-2 digit area code, optional
// dash, 7 digits
var phoneRegex = regexp.MustCompile(`^0\d{1,2}-?\d{7}$`)

var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ReferralCodeLength is the length of generated referral codes
const ReferralCodeLength = 6

// IsValidPhone reports whether s looks like a local phone number
func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(s))
}

// IsValidEmail reports whether s looks like an email address
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// NormalizeEmail lowercases and trims an email for comparisons
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeReferralCode uppercases and trims a code the way it is stored
func NormalizeReferralCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// GenerateReferralCode returns a short random uppercase code
func GenerateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:ReferralCodeLength])
}
