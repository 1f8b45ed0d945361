// internal/validation/validators.go
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validators are pure: they take a raw value and return a pass/fail result
// with an error code and a human-readable message. They never panic and
// never touch I/O, so step gates can run them on every transition attempt.

type Code string

const (
	CodeMissingField Code = "MissingField"
	CodeFormatError  Code = "FormatError"
	CodeRangeError   Code = "RangeError"
	CodeTooShort     Code = "TooShort"
)

type Result struct {
	OK      bool   `json:"ok"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Check is the shape step gates bind to detail fields.
type Check func(value interface{}) Result

func pass() Result {
	return Result{OK: true}
}

func fail(code Code, message string) Result {
	return Result{Code: code, Message: message}
}

var (
	eightDigitPattern = regexp.MustCompile(`^\d{8}$`)
	tenDigitPattern   = regexp.MustCompile(`^\d{10}$`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// DateLayout is the wire format for all date-valued detail fields.
const DateLayout = "2006-01-02"

// MaxDateSpan bounds duration fields like licence validity periods.
const MaxDateSpan = 5 * 365 * 24 * time.Hour

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Required fails when the value is empty or whitespace-only.
func Required(value interface{}) Result {
	if strings.TrimSpace(asString(value)) == "" {
		return fail(CodeMissingField, "this field is required")
	}
	return pass()
}

// EightDigitCode covers TPIN and HS code fields: exactly eight decimal
// digits. Format only, existence against a reference list is a separate
// lookup.
func EightDigitCode(value interface{}) Result {
	if !eightDigitPattern.MatchString(asString(value)) {
		return fail(CodeFormatError, "must be exactly 8 digits")
	}
	return pass()
}

// Email accepts a conservative local@domain.tld shape.
func Email(value interface{}) Result {
	if !emailPattern.MatchString(asString(value)) {
		return fail(CodeFormatError, "invalid email address")
	}
	return pass()
}

// Phone requires exactly ten digits. Deliberately looser than the code
// validators; the looseness is per-field, not universal.
func Phone(value interface{}) Result {
	if !tenDigitPattern.MatchString(asString(value)) {
		return fail(CodeFormatError, "phone number must be exactly 10 digits")
	}
	return pass()
}

// MinLength enforces a minimum trimmed length, e.g. reason-for-applying
// fields that need at least 20 characters.
func MinLength(n int) Check {
	return func(value interface{}) Result {
		if len(strings.TrimSpace(asString(value))) < n {
			return fail(CodeTooShort, fmt.Sprintf("must be at least %d characters", n))
		}
		return pass()
	}
}

func parseDate(value interface{}) (time.Time, Result) {
	s := strings.TrimSpace(asString(value))
	if s == "" {
		return time.Time{}, fail(CodeMissingField, "date is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fail(CodeFormatError, "date must be in YYYY-MM-DD format")
	}
	return t, pass()
}

// DateNotFuture rejects dates after today, e.g. declaration dates.
func DateNotFuture(value interface{}) Result {
	t, res := parseDate(value)
	if !res.OK {
		return res
	}
	if t.After(time.Now()) {
		return fail(CodeRangeError, "date must not be in the future")
	}
	return pass()
}

// DateNotPast rejects dates before today, e.g. waiver start dates.
func DateNotPast(value interface{}) Result {
	t, res := parseDate(value)
	if !res.OK {
		return res
	}
	today := time.Now().Truncate(24 * time.Hour)
	if t.Before(today) {
		return fail(CodeRangeError, "date must not be in the past")
	}
	return pass()
}

// DateRange checks end >= start and a total span of at most five years.
func DateRange(start, end interface{}) Result {
	s, res := parseDate(start)
	if !res.OK {
		return res
	}
	e, res := parseDate(end)
	if !res.OK {
		return res
	}
	if e.Before(s) {
		return fail(CodeRangeError, "end date must not be before start date")
	}
	if e.Sub(s) > MaxDateSpan {
		return fail(CodeRangeError, "period must not exceed 5 years")
	}
	return pass()
}
