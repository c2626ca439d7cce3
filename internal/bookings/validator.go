package bookings

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ValidationError carries every problem found, in the order the rules ran.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// Problems extracts the messages from a validation error, or nil for any other error.
func Problems(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problems
	}
	return nil
}

// nonSpace excludes every Unicode space separator, vertical tab and BOM, not just ASCII whitespace.
const nonSpace = `[^\s\x0B\p{Z}\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + nonSpace + `+@` + nonSpace + `+\.` + nonSpace + `+$`)

// Validate checks a draft against referenceDate. Rules don't short-circuit.
func Validate(d Draft, referenceDate time.Time) error {
	d = d.Normalize()
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	if d.ServiceID == "" {
		add("Please select a service type")
	}
	if d.Date == "" {
		add("Please select a date")
	}
	if d.TimeSlot == "" {
		add("Please select a time slot")
	}
	if d.CustomerName == "" {
		add("Please enter your name")
	}
	if d.CustomerEmail == "" {
		add("Please enter your email")
	}
	if d.CustomerPhone == "" {
		add("Please enter your phone number")
	}
	if d.Address == "" {
		add("Please enter your address")
	}

	if d.CustomerEmail != "" && !emailPattern.MatchString(d.CustomerEmail) {
		add("Please enter a valid email address")
	}

	if d.Date != "" {
		day, err := time.ParseInLocation(DateLayout, d.Date, referenceDate.Location())
		switch {
		case err != nil:
			add("Please select a valid date")
		case day.Before(midnight(referenceDate)):
			add("Please select a future date")
		}
	}

	if d.TimeSlot != "" && !slices.Contains(TimeSlots, d.TimeSlot) {
		add("Please select a valid time slot")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
