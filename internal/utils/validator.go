// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	tpinPattern      = regexp.MustCompile(`^\d{8}$`)
	agentCodePattern = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("tpin", validateTpin)
	validate.RegisterValidation("agent_code", validateAgentCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateTpin(fl validator.FieldLevel) bool {
	return tpinPattern.MatchString(fl.Field().String())
}

func validateAgentCode(fl validator.FieldLevel) bool {
	return agentCodePattern.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "tpin":
		return "TPIN must be exactly 8 digits"
	case "agent_code":
		return "Agent code must be 3-20 uppercase letters or digits"
	default:
		return e.Field() + " is invalid"
	}
}
