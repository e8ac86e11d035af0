package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("test_field", "test message", "test_value")

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "test_value" {
		t.Errorf("Expected value to be 'test_value', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'test_field': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestToValidationErrors(t *testing.T) {
	v := validator.New()
	alwaysFail := func(validator.FieldLevel) bool { return false }
	if err := v.RegisterValidation("option_tag", alwaysFail); err != nil {
		t.Fatalf("register option_tag: %v", err)
	}
	if err := v.RegisterValidation("user_role", alwaysFail); err != nil {
		t.Fatalf("register user_role: %v", err)
	}

	payload := struct {
		Username string `validate:"required"`
		Role     string `validate:"user_role"`
		Answer   string `validate:"option_tag"`
	}{Role: "admin", Answer: "x"}

	errs := ToValidationErrors(v.Struct(payload))
	if len(errs) != 3 {
		t.Fatalf("expected 3 field errors, got %d", len(errs))
	}

	byField := make(map[string]ValidationError, len(errs))
	for _, e := range errs {
		byField[e.Field] = e
	}

	cases := []struct {
		field   string
		message string
		rule    string
	}{
		{"Username", "is required", "required"},
		{"Role", "must be a valid user role (student, teacher)", "user_role"},
		{"Answer", "must be one of the option tags a, b, c or d", "option_tag"},
	}
	for _, c := range cases {
		got, ok := byField[c.field]
		if !ok {
			t.Fatalf("missing error for field %q", c.field)
		}
		if got.Message != c.message {
			t.Errorf("field %q: expected message %q, got %q", c.field, c.message, got.Message)
		}
		if got.Rule != c.rule {
			t.Errorf("field %q: expected rule %q, got %q", c.field, c.rule, got.Rule)
		}
	}

	// Anything that is not a validator error converts to nothing.
	if got := ToValidationErrors(fmt.Errorf("boom")); got != nil {
		t.Errorf("expected nil for non-validator error, got %v", got)
	}
}
