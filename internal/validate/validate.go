// Package validate checks request payloads before they are sent or stored.
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError names one offending field by its JSON name.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "invalid input"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func New(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		// report JSON names, not Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return v
}

var messages = map[string]string{
	"required": "this field is required",
	"email":    "must be a valid email address",
	"oneof":    "has an unsupported value",
}

// Struct validates s against its `validate` tags.
func Struct(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "failed on " + fe.Tag()
		}
		fields = append(fields, FieldError{Field: fe.Field(), Error: msg})
	}
	return &ValidationError{Err: errors.New(fields[0].Field + ": " + fields[0].Error), Fields: fields}
}

// ErrEmailDomain rejects addresses outside the institutional domain.
var ErrEmailDomain = errors.New("only official institutional email addresses are allowed")

// EmailDomain checks that email ends with suffix, ignoring case.
func EmailDomain(email, suffix string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if suffix == "" || strings.HasSuffix(email, strings.ToLower(suffix)) {
		return nil
	}
	return New(ErrEmailDomain, FieldError{Field: "email", Error: ErrEmailDomain.Error()})
}

// CleanEmail trims and lowers an email address.
func CleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
