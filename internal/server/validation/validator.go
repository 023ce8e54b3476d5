// Package validation checks registration and profile forms and reports
// problems per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	// bcrypt only accepts the first 72 bytes of a secret, so rune counts
	// from "max" are not enough.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// Registration is the self-registration form.
type Registration struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,maxbytes=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FullName        string `json:"full_name" validate:"required,min=2,max=100"`
}

// ProfileUpdate is the self-service profile form; every field is optional.
type ProfileUpdate struct {
	FullName *string `json:"full_name,omitempty" validate:"omitnil,min=2,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitnil,email"`
	Password *string `json:"password,omitempty" validate:"omitnil,min=6,maxbytes=72"`
}

// AccountUpdate is the administrative form; it may also replace roles.
type AccountUpdate struct {
	ProfileUpdate
	Roles []string `json:"roles,omitempty" validate:"omitempty,min=1,dive,required,alphanum"`
}

// ValidateRegistration checks the form and the password confirmation.
func ValidateRegistration(r Registration) error {
	fields := collect(validate.Struct(r))
	if r.ConfirmPassword != "" && r.Password != r.ConfirmPassword {
		fields = append(fields, common.FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}
	if len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}

// Struct validates any of the forms in this package.
func Struct(form any) error {
	if fields := collect(validate.Struct(form)); len(fields) > 0 {
		return &common.ValidationError{Fields: fields}
	}
	return nil
}

func collect(err error) []common.FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []common.FieldError{{Field: "form", Message: err.Error()}}
	}
	fields := make([]common.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, common.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "alphanum":
		return "must be alphanumeric"
	default:
		return fmt.Sprintf("must satisfy %s constraint", fe.Tag())
	}
}
