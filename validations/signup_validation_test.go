package validations

import (
	"context"
	"errors"
	"testing"

	"github.com/kodecrm/wacoex/domains/signup"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
)

func TestValidateSignup(t *testing.T) {
	ctx := context.Background()

	valid := signup.Request{ConnectionType: signup.ConnectionTypeCoexistence}
	if err := ValidateSignup(ctx, valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	missing := signup.Request{}
	if err := ValidateSignup(ctx, missing); err == nil {
		t.Fatal("expected error for missing connection_type")
	}

	unknown := signup.Request{ConnectionType: "legacy"}
	err := ValidateSignup(ctx, unknown)
	if err == nil {
		t.Fatal("expected error for unknown connection_type")
	}
	var verr pkgError.ValidationErrorType
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationErrorType, got %T", err)
	}
}
