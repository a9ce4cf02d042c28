// Package forms binds and validates the HTML forms of the site.
package forms

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const (
	NonFieldErrors = "__all__"

	msgRequired     = "This field is required."
	msgInvalidGroup = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

func init() {
	// report validation errors under the form field names the templates use
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
	}
}

// Errors maps a field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Get(field string) []string {
	return e[field]
}

func (e Errors) Any() bool {
	return len(e) > 0
}

// FromBindError converts a gin binding error into per-field messages.
func FromBindError(err error) Errors {
	errs := Errors{}
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add(NonFieldErrors, "The form could not be read.")
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

// requireText flags value as missing when it is blank.
func requireText(errs Errors, field, value string) {
	if strings.TrimSpace(value) == "" && !errs.Has(field) {
		errs.Add(field, msgRequired)
	}
}
