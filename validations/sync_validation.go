package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/kodecrm/wacoex/domains/sync"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
)

func ValidateManualSync(ctx context.Context, request sync.ManualSyncRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.PhoneNumberID, validation.Length(0, 64)),
		validation.Field(&request.WabaID, validation.Length(0, 64)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
