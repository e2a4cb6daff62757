package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kodecrm/wacoex/domains/signup"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
)

func ValidateSignup(ctx context.Context, request signup.Request) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.ConnectionType,
			validation.Required,
			validation.In(signup.ConnectionTypeNew, signup.ConnectionTypeCoexistence),
		),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
