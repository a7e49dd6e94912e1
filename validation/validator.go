package validation

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/kbukum/techdocs/errors"
)

// Validator collects validation errors.
type Validator struct {
	errors []FieldError
	cause  error
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns a CONFIGURATION_ERROR if there are validation errors, nil
// otherwise. With a single failure the error names that field directly.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	var appErr *errors.AppError
	if len(v.errors) == 1 {
		appErr = errors.Configuration(v.errors[0].Field, v.errors[0].Message)
	} else {
		messages := make([]string, len(v.errors))
		for i, e := range v.errors {
			messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
		}
		appErr = errors.Configuration("", strings.Join(messages, "; "))
	}
	appErr.WithDetail("fields", v.errors)
	if v.cause != nil {
		appErr.WithCause(v.cause)
	}
	return appErr
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// AbsoluteURL checks that a non-empty string parses as an absolute URL with
// a scheme and host.
func (v *Validator) AbsoluteURL(field, value string) *Validator {
	if value == "" {
		return v
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		v.AddError(field, "must be a well-formed absolute URL")
	}
	return v
}

// JSONObject checks that a non-empty string holds a JSON object. The parse
// error, if any, becomes the cause of the resulting AppError.
func (v *Validator) JSONObject(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err != nil {
		v.AddError(field, "must be a JSON object: "+err.Error())
		if v.cause == nil {
			v.cause = err
		}
	}
	return v
}
