package validation

import (
	"regexp"
)

// Phone numbers: digits with optional leading +, 7-15 digits.
var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Names: letters, spaces, hyphens, apostrophes only.
var nameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}

func IsValidName(name string) bool {
	return name != "" && nameRe.MatchString(name)
}
