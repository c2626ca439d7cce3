package payments

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
)

// CardInput is the raw payment form.
type CardInput struct {
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
	CardName   string `json:"cardName"`
}

var (
	whitespace   = regexp.MustCompile(`\s`)
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	expiryRe     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe        = regexp.MustCompile(`^\d{3}$`)
	minCardName  = 3
)

// ValidateCard reports every problem with the form, or nil.
func ValidateCard(in CardInput) error {
	var problems []string

	if !cardNumberRe.MatchString(whitespace.ReplaceAllString(in.CardNumber, "")) {
		problems = append(problems, "Please enter a valid 16-digit card number")
	}
	if !expiryRe.MatchString(strings.TrimSpace(in.ExpiryDate)) {
		problems = append(problems, "Please enter expiry date in MM/YY format")
	}
	if !cvvRe.MatchString(strings.TrimSpace(in.CVV)) {
		problems = append(problems, "Please enter a valid 3-digit CVV")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.CardName)) < minCardName {
		problems = append(problems, "Please enter the name on card")
	}

	if len(problems) > 0 {
		return &bookings.ValidationError{Problems: problems}
	}
	return nil
}

// Last4 is the only part of the card number that may be logged.
func (in CardInput) Last4() string {
	n := whitespace.ReplaceAllString(in.CardNumber, "")
	if len(n) < 4 {
		return ""
	}
	return n[len(n)-4:]
}
