package types

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return identifierRe.MatchString(fl.Field().String())
	})
	return v
}

// IsIdentifier reports whether s is a valid profile, host, resource or alias name.
func IsIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// Validate checks a request body against its `validate` tags and converts the
// first failure into a validation CustomError.
func Validate(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewValidationError("invalid request: %v", err)
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return NewValidationError("Missing required field '%s'", field)
	case "identifier":
		return NewValidationError("Invalid %s '%v'", field, fe.Value())
	default:
		return NewValidationError("Invalid field '%s': failed %s", field, fe.Tag())
	}
}
