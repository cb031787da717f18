package serverutils

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Mode     string `json:"mode" validate:"omitempty,oneof=review write research"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid input passes", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{
			Email:    "user@example.com",
			Password: "longenough",
			Mode:     "review",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("reports all violations at once", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{})

		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		if len(valErr.Fields) != 2 {
			t.Errorf("got %d field errors, want 2: %v", len(valErr.Fields), valErr.Fields)
		}
		if valErr.Fields["Email"] != "Email cannot be empty." {
			t.Errorf("Email message = %q", valErr.Fields["Email"])
		}
		if valErr.Fields["Password"] != "Password cannot be empty." {
			t.Errorf("Password message = %q", valErr.Fields["Password"])
		}
	})

	t.Run("min length message", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{Email: "user@example.com", Password: "short"})

		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		if valErr.Fields["Password"] != "Password must be at least 8 characters." {
			t.Errorf("Password message = %q", valErr.Fields["Password"])
		}
	})

	t.Run("oneof message", func(t *testing.T) {
		err := ValidateRequest(sampleRequest{
			Email:    "user@example.com",
			Password: "longenough",
			Mode:     "summon",
		})

		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected *ValidationError, got %T", err)
		}
		if valErr.Fields["Mode"] != "Mode must be one of: review write research." {
			t.Errorf("Mode message = %q", valErr.Fields["Mode"])
		}
	})
}
