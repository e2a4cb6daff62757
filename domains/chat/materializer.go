package chat

import (
	"context"

	"github.com/kodecrm/wacoex/domains/tenant"
	"github.com/kodecrm/wacoex/domains/webhook"
)

// MaterializeCounts summarizes one batch materialization.
type MaterializeCounts struct {
	Synced  int
	Skipped int
	Errored int
}

// IMaterializerUsecase idempotently turns synced/echoed provider data into
// tenant-scoped Contact/Chat/ChatMessage records. Single-item failures are
// logged and counted, never abort the batch.
type IMaterializerUsecase interface {
	SyncContacts(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string, contacts []webhook.SyncContact) MaterializeCounts
	SyncMessageHistory(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string, messages []webhook.HistoryMessage) MaterializeCounts
	ProcessMessageEcho(ctx context.Context, tc tenant.Context, phoneNumberID string, echo webhook.EchoMessage) error
}
