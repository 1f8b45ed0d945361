// internal/validation/validators_test.go
package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.True(t, Required("x").OK)
	assert.True(t, Required(42).OK)

	for _, v := range []interface{}{"", "   ", "\t\n", nil} {
		res := Required(v)
		assert.False(t, res.OK)
		assert.Equal(t, CodeMissingField, res.Code)
		assert.NotEmpty(t, res.Message)
	}
}

func TestEightDigitCode(t *testing.T) {
	assert.True(t, EightDigitCode("12345678").OK)
	assert.True(t, EightDigitCode("00000000").OK)

	for _, v := range []string{"1234567", "123456789", "1234567a", "12 45678", "", "1234567.8"} {
		res := EightDigitCode(v)
		assert.False(t, res.OK, "expected %q to fail", v)
		assert.Equal(t, CodeFormatError, res.Code)
	}
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("trader@example.com").OK)
	assert.True(t, Email("a.b+c@mail.co.uk").OK)

	for _, v := range []string{"", "plain", "a@b", "a@b.", "@example.com", "a b@example.com"} {
		assert.False(t, Email(v).OK, "expected %q to fail", v)
	}
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("0999123456").OK)

	for _, v := range []string{"099912345", "09991234567", "0999-12345", ""} {
		res := Phone(v)
		assert.False(t, res.OK)
		assert.Equal(t, CodeFormatError, res.Code)
	}
}

func TestMinLength(t *testing.T) {
	check := MinLength(20)

	assert.True(t, check("this reason is definitely long enough").OK)

	res := check("too short")
	assert.False(t, res.OK)
	assert.Equal(t, CodeTooShort, res.Code)

	// Whitespace padding does not count toward the minimum.
	assert.False(t, check("pad                                    ").OK)
}

func TestDateNotFuture(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1).Format(DateLayout)
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)

	assert.True(t, DateNotFuture(yesterday).OK)

	res := DateNotFuture(tomorrow)
	assert.False(t, res.OK)
	assert.Equal(t, CodeRangeError, res.Code)

	assert.Equal(t, CodeFormatError, DateNotFuture("15/01/2024").Code)
	assert.Equal(t, CodeMissingField, DateNotFuture("").Code)
}

func TestDateNotPast(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format(DateLayout)
	yesterday := time.Now().AddDate(0, 0, -1).Format(DateLayout)

	assert.True(t, DateNotPast(tomorrow).OK)
	assert.False(t, DateNotPast(yesterday).OK)
}

func TestDateRange(t *testing.T) {
	assert.True(t, DateRange("2024-01-01", "2024-12-31").OK)
	assert.True(t, DateRange("2024-01-01", "2024-01-01").OK)

	res := DateRange("2024-06-01", "2024-01-01")
	assert.False(t, res.OK)
	assert.Equal(t, CodeRangeError, res.Code)

	// Span capped at five years.
	res = DateRange("2024-01-01", "2030-01-01")
	assert.False(t, res.OK)
	assert.Equal(t, CodeRangeError, res.Code)

	assert.False(t, DateRange("", "2024-01-01").OK)
	assert.False(t, DateRange("2024-01-01", "bad").OK)
}
