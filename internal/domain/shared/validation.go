package shared

import "regexp"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks length and basic format of an email address
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return NewDomainError("INVALID_EMAIL", "Email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
