// Package validate wraps go-playground/validator with the rules and
// user-facing messages shared by the lead form and the auth forms.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagEmail is the custom email rule. It is stricter than validator's
// built-in "email" and matches what the API accepts.
const TagEmail = "leademail"

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// IsEmail reports whether s is an acceptable email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Messages maps "<json field>.<tag>" to the message shown for that failure.
type Messages map[string]string

// Validator wraps the go-playground validator with custom rules
type Validator struct {
	validator *validator.Validate
}

var (
	defaultOnce sync.Once
	defaultV    *Validator
)

// Default returns a shared Validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func Default() *Validator {
	defaultOnce.Do(func() { defaultV = New() })
	return defaultV
}

// New creates a new validator instance with custom rules
func New() *Validator {
	validate := validator.New()

	_ = validate.RegisterValidation(TagEmail, func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	// Use JSON field names so messages can be keyed by wire name
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validator: validate}
}

// Struct validates s. Failures come back as *ValidationError with one
// entry per failing field, in struct order, using msgs for the text.
func (v *Validator) Struct(s interface{}, msgs Messages) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe, msgs))
	}
	return out
}

func message(fe validator.FieldError, msgs Messages) string {
	if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case TagEmail:
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// FieldError is one failing field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists field failures in a stable order.
type ValidationError struct {
	Fields []FieldError
}

// Add records a failure. Only the first message per field is kept.
func (e *ValidationError) Add(field, msg string) {
	if e.Message(field) != "" {
		return
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// Message returns the message for field, or "".
func (e *ValidationError) Message(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// Messages returns every message in order.
func (e *ValidationError) Messages() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Message
	}
	return out
}

// Empty reports whether no failures were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages(), "; ")
}
