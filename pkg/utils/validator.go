package utils

import (
	"fmt"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var nonDigits = regexp.MustCompile(`\D`)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateCPF validates a Brazilian CPF: eleven digits with a valid check
// pair. Formatting characters are ignored.
func ValidateCPF(cpf string) error {
	digits := nonDigits.ReplaceAllString(cpf, "")
	if len(digits) != 11 {
		return fmt.Errorf("CPF must have 11 digits: %s", cpf)
	}

	// All-same-digit sequences pass the checksum but are not valid CPFs
	same := true
	for i := 1; i < 11; i++ {
		if digits[i] != digits[0] {
			same = false
			break
		}
	}
	if same {
		return fmt.Errorf("invalid CPF: %s", cpf)
	}

	if !cpfCheckDigit(digits, 9) || !cpfCheckDigit(digits, 10) {
		return fmt.Errorf("invalid CPF check digits: %s", cpf)
	}

	return nil
}

// cpfCheckDigit verifies the check digit at the given position
func cpfCheckDigit(digits string, position int) bool {
	sum := 0
	for i := 0; i < position; i++ {
		sum += int(digits[i]-'0') * (position + 1 - i)
	}
	expected := 11 - sum%11
	if expected >= 10 {
		expected = 0
	}
	return int(digits[position]-'0') == expected
}

// NormalizeCPF strips formatting characters from a CPF
func NormalizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
