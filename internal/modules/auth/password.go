package auth

import (
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	passwordSymbols   = `!@#$%^&*(),.?":{}|<>`
)

// PasswordChecks reports each criterion of the password policy separately so
// the dialog can show them as the user types.
type PasswordChecks struct {
	Length    bool
	Digit     bool
	Symbol    bool
	Uppercase bool
}

func (c PasswordChecks) Valid() bool {
	return c.Length && c.Digit && c.Symbol && c.Uppercase
}

func CheckPassword(pwd string) PasswordChecks {
	c := PasswordChecks{Length: utf8.RuneCountInString(pwd) >= minPasswordLength}
	for _, r := range pwd {
		switch {
		case r >= '0' && r <= '9':
			c.Digit = true
		case r >= 'A' && r <= 'Z':
			c.Uppercase = true
		case strings.ContainsRune(passwordSymbols, r):
			c.Symbol = true
		}
	}
	return c
}

// DigitsOnly drops every non-digit; DNI and code inputs pass through it on
// every keystroke.
func DigitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func isSixDigitCode(code string) bool {
	return len(code) == 6 && DigitsOnly(code) == code
}
