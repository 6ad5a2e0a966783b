package services

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/pluggedhq/login-server/internal/models"
)

// Global validator instance (reused across all services)
var validate = validator.New()

var (
	// Letters and spaces only, matching what the signup form accepts.
	nameRegex = regexp.MustCompile(`^[a-zA-Z ]*$`)
	// Basic local@domain.tld shape. Deliberately loose; deliverability is
	// proven by the verification email, not the pattern.
	emailRegex = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
)

func init() {
	_ = validate.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return nameRegex.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("emailbasic", func(fl validator.FieldLevel) bool {
		return emailRegex.MatchString(fl.Field().String())
	})
}

type signupInput struct {
	Name     string `validate:"personname"`
	Email    string `validate:"emailbasic"`
	Password string `validate:"min=8"`
}

// validateSignup checks signup input before any store access. Empty fields
// are rejected as a group first, then each field in declaration order.
func validateSignup(name, email, password, dateOfBirth string) *models.ValidationError {
	if name == "" || email == "" || password == "" || dateOfBirth == "" {
		return &models.ValidationError{Message: "Empty input fields!"}
	}

	err := validate.Struct(signupInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return &models.ValidationError{Message: "Invalid input"}
	}

	switch ve[0].Field() {
	case "Name":
		return &models.ValidationError{Field: "name", Message: "Invalid name entered"}
	case "Email":
		return &models.ValidationError{Field: "email", Message: "Invalid email entered"}
	case "Password":
		return &models.ValidationError{Field: "password", Message: "Password is too short!"}
	default:
		return &models.ValidationError{Message: "Invalid input"}
	}
}
