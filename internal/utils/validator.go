package utils

import (
	"reflect"
	"strings"

	apperrors "github.com/classmark/testing-service/internal/errors"
	"github.com/classmark/testing-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the struct validator with the project's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate runs struct-tag validation and converts failures to
// apperrors.ValidationErrors so handlers can map them to 400 responses.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if verrs := apperrors.ToValidationErrors(err); len(verrs) > 0 {
			return verrs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("option_tag", validateOptionTag)
	validate.RegisterValidation("user_role", validateUserRole)

	// Report JSON field names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateOptionTag(fl validator.FieldLevel) bool {
	return models.OptionTag(fl.Field().String()).Valid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleStudent, models.RoleTeacher:
		return true
	}
	return false
}
