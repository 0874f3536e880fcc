// Package validate runs client side pre-flight checks on request payloads
// so obviously broken input never reaches the network.
package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eventhive/eventhive-go/internal/apperrors"
)

var validate = validator.New()

func init() {
	// Report on 'TagName' json tag instead of struct field name
	// Look at documentation of 'RegisterTagNameFunc' for more details
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		// skip if tag key says it should be ignored
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates v against its 'validate' struct tags. The first failing
// field is reported as a validation error of the taxonomy; the UI gets the
// field name and a friendly message, never the validator internals.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperrors.Wrap(apperrors.KindValidation, err)
	}

	first := errs[0]
	return apperrors.Validation(first.Field(), fieldMessage(first))
}

// SignInFields checks the sign-in pair without requiring a request struct.
func SignInFields(email string, password string) error {
	if err := Email(email); err != nil {
		return err
	}
	if err := validate.Var(password, "required"); err != nil {
		return apperrors.Validation("password", "Password is required")
	}
	return nil
}

// Email checks a single email address.
func Email(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return apperrors.Validation("email", "Enter a valid email address")
	}
	return nil
}

// fieldMessage builds user friendly messages based on validation tag
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return "Enter a valid email address"
	case "min":
		return fmt.Sprintf("Value is too short (minimum %s)", fe.Param())
	case "max":
		return fmt.Sprintf("Value is too long (maximum %s)", fe.Param())
	case "e164":
		return "Enter a valid phone number"
	case "url":
		return "Enter a valid URL"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", fe.Field())
	}
}
