// Package validation turns go-playground/validator failures into field
// errors the client can act on.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/theater-service/internal/errs"
)

// FieldErrors converts validator.ValidationErrors into errs.FieldError
// values.  Any other error yields nil.
func FieldErrors(err error) []errs.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]errs.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, errs.FieldError{
			Field: strings.ToLower(fe.Field()),
			Error: message(fe),
		})
	}
	return out
}

// HasTag reports whether any failed rule in err used tag.
func HasTag(err error, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Tag() == tag {
			return true
		}
	}
	return false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s:%s", fe.Tag(), fe.Param())
	}
	return fe.Tag()
}
