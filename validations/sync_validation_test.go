package validations

import (
	"context"
	"strings"
	"testing"

	"github.com/kodecrm/wacoex/domains/sync"
)

func TestValidateManualSync(t *testing.T) {
	ctx := context.Background()

	if err := ValidateManualSync(ctx, sync.ManualSyncRequest{}); err != nil {
		t.Fatalf("blank request should be valid, got %v", err)
	}
	if err := ValidateManualSync(ctx, sync.ManualSyncRequest{PhoneNumberID: "100", WabaID: "200"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tooLong := sync.ManualSyncRequest{PhoneNumberID: strings.Repeat("9", 65)}
	if err := ValidateManualSync(ctx, tooLong); err == nil {
		t.Fatal("expected error for oversized phone_number_id")
	}
}
