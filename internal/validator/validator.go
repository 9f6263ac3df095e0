package validator

import (
	"errors"
	"fmt"
	"jsonstore/internal/models"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

var validate *validator.Validate

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.@-]+$`)

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Struct validates s by its `validate` tags and reports every failing field
// as a *models.ValidationError keyed by its JSON name.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &models.ValidationError{Messages: make([]models.ValidationMessage, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Messages = append(out.Messages, models.ValidationMessage{
			Property: property(fe.Namespace()),
			Message:  message(fe),
		})
	}
	return out
}

// property drops the root struct name from a namespace such as
// "JSONStoreItem.readPermission[0]".
func property(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func IsValidEmail(email string) bool {
	return validate.Var(email, "required,email,max=255") == nil
}

func IsValidUsername(username string) bool {
	return utf8.RuneCountInString(username) <= 40 && usernameRe.MatchString(username)
}

func IsValidPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	return n >= 8 && n <= 255
}
