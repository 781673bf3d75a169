package handler

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"storefront-auth/backend/internal/server/httpx"
)

const passwordSpecials = "!@#$%^&*"

type signUpRequest struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72,strongpassword"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type newPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72,strongpassword"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return v
}

// strongPassword requires a digit, an upper-case letter and one of !@#$%^&*.
func strongPassword(fl validator.FieldLevel) bool {
	return passwordProblem(fl.Field().String()) == ""
}

func passwordProblem(p string) string {
	var digit, upper, special bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsUpper(r):
			upper = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case !digit:
		return "Password must contain at least one number."
	case !upper:
		return "Password must contain at least one uppercase letter."
	case !special:
		return "Password must contain at least one special character."
	}
	return ""
}

// fieldErrors converts validator errors to the response shape. Other errors yield nil.
func fieldErrors(err error) []httpx.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]httpx.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, httpx.FieldError{
			Msg:      fieldMessage(fe),
			Param:    fe.Field(),
			Location: "body",
		})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		if fe.Tag() == "required" {
			return "Name is required."
		}
		return "Name must be at least 3 characters long."
	case "email":
		return "Please provide a valid email address."
	case "otp":
		if fe.Tag() == "numeric" {
			return "OTP must contain only numeric characters."
		}
		return "OTP must be exactly 6 digits long."
	case "password", "newPassword":
		switch fe.Tag() {
		case "required":
			return "Password is required."
		case "min":
			return "Password must be at least 6 characters long."
		case "max":
			return "Password must be at most 72 characters long."
		case "strongpassword":
			if p, ok := fe.Value().(string); ok {
				if msg := passwordProblem(p); msg != "" {
					return msg
				}
			}
		}
	}
	return fe.Error()
}
