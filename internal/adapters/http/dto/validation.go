package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	// ErrValidation indicates a validation failure occurred.
	ErrValidation = errors.New("validation failed")

	// ErrBinding indicates JSON or query binding failed.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the singleton validator instance, configured to report
// JSON field names in error messages.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation("notempty", validateNotEmpty)
	})

	return validate
}

// Validate validates a struct using the singleton validator.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// BindAndValidate binds the JSON body to the struct and validates it.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
	return Validate(v)
}

// BindQueryAndValidate binds query parameters and validates.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}
	return Validate(v)
}

// ValidationErrors extracts field-level messages from a validator error,
// keyed by JSON field name.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fieldErrors[fieldErr.Field()] = validationMessage(fieldErr)
		}
	}

	return fieldErrors
}

var validationMessages = map[string]string{
	"required": "this field is required",
	"notempty": "must not be empty",
	"gte":      "must be greater than or equal to {param}",
	"lte":      "must be less than or equal to {param}",
	"max":      "must be at most {param}",
	"min":      "must be at least {param}",
	"dive":     "contains an invalid element",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := validationMessages[fe.Tag()]; ok {
		return strings.ReplaceAll(msg, "{param}", fe.Param())
	}
	return "failed validation: " + fe.Tag()
}

func validateNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
