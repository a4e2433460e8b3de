// Package forms holds the submission forms and their field-level
// validation. Validation is pure: a form either yields an empty error map
// or a map of field name to message, and nothing is persisted on failure.
package forms

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds a validator that reports fields by their form tag
// name, so error maps line up with what the client submitted.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// PostForm is the submission form for creating or editing a post
type PostForm struct {
	Text    string `form:"text" json:"text" validate:"required"`
	GroupID int64  `form:"group" json:"group" validate:"omitempty,min=1"`
	Image   string `form:"image" json:"image" validate:"omitempty,max=1024"`
}

// CommentForm is the submission form for commenting on a post
type CommentForm struct {
	Text string `form:"text" json:"text" validate:"required"`
}

// SignupForm is the registration form
type SignupForm struct {
	Username string `form:"username" json:"username" validate:"required,max=150"`
	Email    string `form:"email" json:"email" validate:"omitempty,email"`
	Password string `form:"password" json:"password" validate:"required,min=8"`
}

// LoginForm is the login form
type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

// Validate checks a form and returns per-field error messages.
// An empty map means the form is valid.
func Validate(form interface{}) map[string]string {
	errs := make(map[string]string)
	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !asValidationErrors(err, &verrs) {
			errs["_form"] = err.Error()
			return errs
		}
		for _, fe := range verrs {
			errs[strings.ToLower(fe.Field())] = message(fe)
		}
	}
	return errs
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
