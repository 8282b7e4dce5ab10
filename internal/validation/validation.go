// Package validation holds the input rules shared by the account and project
// APIs and wires them into gin's validator engine.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MobileMessage is reported for a mobile number that fails the format check
const MobileMessage = "Invalid Egyptian mobile number"

// MobileTag is the struct tag name of the mobile format rule
const MobileTag = "egmobile"

var mobilePattern = regexp.MustCompile(`^01[0125][0-9]{8}$`)

var registerOnce sync.Once

// ValidMobile reports whether s is an 11 digit Egyptian mobile number
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Register installs the custom rules on gin's validator. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
		_ = v.RegisterValidation(MobileTag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || ValidMobile(s)
		})
	})
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// FieldErrors converts a binding error into per-field messages. ok is false
// when err does not describe individual fields.
func FieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = message(fe)
		}
		return fields, true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: "Invalid value."}, true
	}

	return nil, false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case MobileTag:
		return MobileMessage
	default:
		return "Invalid value."
	}
}
