package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kodecrm/wacoex/domains/chat"
	domainSync "github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	"github.com/kodecrm/wacoex/domains/webhook"
)

func newMaterializer(r repos) chat.IMaterializerUsecase {
	return NewMaterializerService(r.chats, r.sync, r.bus)
}

func historyMessage(id, from, to string, fromMe bool, body string, ts int64) webhook.HistoryMessage {
	return webhook.HistoryMessage{
		ID:        id,
		From:      from,
		To:        to,
		FromMe:    fromMe,
		Type:      "text",
		Timestamp: ts,
		Text:      &webhook.TextContent{Body: body},
	}
}

func TestSyncContactsCreatesLeads(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	if _, err := r.sync.Ensure(ctx, 1, "100", "200"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	contacts := []webhook.SyncContact{
		{WaID: "15550001111", Profile: &webhook.Profile{Name: "Jane Roe"}},
		{Phone: "+1 (555) 000-2222", Profile: &webhook.Profile{FirstName: "John", LastName: "Doe"}},
		{WaID: ""}, // nothing to key on
	}
	counts := service.SyncContacts(ctx, tc, "100", "200", contacts)
	if counts.Synced != 2 || counts.Skipped != 1 || counts.Errored != 0 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	jane, err := r.chats.GetContactByPhone(ctx, 1, "+15550001111")
	if err != nil || jane == nil {
		t.Fatalf("expected contact for +15550001111, got %v (%v)", jane, err)
	}
	if jane.Firstname != "Jane" || jane.Lastname != "Roe" {
		t.Fatalf("full name not split: %q %q", jane.Firstname, jane.Lastname)
	}
	if jane.Type != chat.ContactTypeLead {
		t.Fatalf("expected lead, got %q", jane.Type)
	}
	if jane.SourceID == "" || jane.StatusID == "" {
		t.Fatal("expected source and status assigned")
	}
	if !strings.Contains(string(jane.Metadata), "15550001111") {
		t.Fatalf("expected raw provider payload kept as metadata, got %q", jane.Metadata)
	}

	status, err := r.sync.Get(ctx, 1, "100")
	if err != nil || status == nil {
		t.Fatalf("get sync status: %v (%v)", err, status)
	}
	if status.ContactsSyncStatus != domainSync.StatusCompleted {
		t.Fatalf("expected contacts completed, got %s", status.ContactsSyncStatus)
	}
	if status.TotalContactsSynced != 2 {
		t.Fatalf("expected 2 contacts counted, got %d", status.TotalContactsSynced)
	}
	if status.ContactsSyncCompletedAt == nil {
		t.Fatal("expected contacts_sync_completed_at set")
	}
}

func TestSyncContactsBackfillsBlankNamesOnly(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	first := []webhook.SyncContact{{WaID: "15550001111", Profile: &webhook.Profile{Name: "Jane Roe"}}}
	service.SyncContacts(ctx, tc, "100", "200", first)

	// A later delivery with a different name must not overwrite.
	again := []webhook.SyncContact{{WaID: "15550001111", Profile: &webhook.Profile{Name: "Janet Other"}}}
	service.SyncContacts(ctx, tc, "100", "200", again)

	contact, err := r.chats.GetContactByPhone(ctx, 1, "+15550001111")
	if err != nil || contact == nil {
		t.Fatalf("get contact: %v (%v)", contact, err)
	}
	if contact.Firstname != "Jane" || contact.Lastname != "Roe" {
		t.Fatalf("existing names were overwritten: %q %q", contact.Firstname, contact.Lastname)
	}
}

func TestSyncContactsBackfillsNamelessContact(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	// First seen through a history message, so no name yet.
	msgs := []webhook.HistoryMessage{historyMessage("wamid.1", "15550001111", "100", false, "hi", 1700000000)}
	service.SyncMessageHistory(ctx, tc, "100", "200", msgs)

	before, _ := r.chats.GetContactByPhone(ctx, 1, "+15550001111")
	if before == nil || before.Firstname != "" {
		t.Fatalf("precondition failed: %+v", before)
	}

	service.SyncContacts(ctx, tc, "100", "200", []webhook.SyncContact{
		{WaID: "15550001111", Profile: &webhook.Profile{Name: "Jane Roe"}},
	})

	after, _ := r.chats.GetContactByPhone(ctx, 1, "+15550001111")
	if after.Firstname != "Jane" || after.Lastname != "Roe" {
		t.Fatalf("blank names were not backfilled: %q %q", after.Firstname, after.Lastname)
	}
}

func TestSyncMessageHistoryDedup(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	msgs := []webhook.HistoryMessage{
		historyMessage("wamid.1", "15550001111", "100", false, "hello", 1700000000),
		historyMessage("wamid.1", "15550001111", "100", false, "hello", 1700000000), // duplicate in batch
		historyMessage("wamid.2", "100", "15550001111", true, "hi back", 1700000100),
	}
	counts := service.SyncMessageHistory(ctx, tc, "100", "200", msgs)
	if counts.Synced != 2 || counts.Skipped != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	// Redelivery of the whole batch is a no-op.
	counts = service.SyncMessageHistory(ctx, tc, "100", "200", msgs)
	if counts.Synced != 0 || counts.Skipped != 3 {
		t.Fatalf("unexpected redelivery counts: %+v", counts)
	}

	var total int64
	if err := r.db.Model(&chat.ChatMessage{}).Where("tenant_id = ?", 1).Count(&total).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 stored messages, got %d", total)
	}
}

func TestSyncMessageHistoryThreadsChat(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	if _, err := r.sync.Ensure(ctx, 1, "100", "200"); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// Both directions of the conversation land in one chat keyed by the
	// customer phone.
	msgs := []webhook.HistoryMessage{
		historyMessage("wamid.1", "15550001111", "100", false, "question", 1700000000),
		historyMessage("wamid.2", "100", "15550001111", true, "answer", 1700000100),
	}
	service.SyncMessageHistory(ctx, tc, "100", "200", msgs)

	var chats []chat.Chat
	if err := r.db.Where("tenant_id = ?", 1).Find(&chats).Error; err != nil {
		t.Fatalf("find chats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
	if chats[0].ReceiverID != "+15550001111" {
		t.Fatalf("unexpected chat receiver: %q", chats[0].ReceiverID)
	}
	if chats[0].LastMessage != "answer" {
		t.Fatalf("last message not updated to newest, got %q", chats[0].LastMessage)
	}

	status, _ := r.sync.Get(ctx, 1, "100")
	if status == nil || status.TotalMessagesSynced != 2 {
		t.Fatalf("expected 2 messages counted, got %+v", status)
	}
}

func TestSyncMessageHistoryPlaceholderBody(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	msgs := []webhook.HistoryMessage{{
		ID:        "wamid.media",
		From:      "15550001111",
		To:        "100",
		Type:      "image",
		Timestamp: 1700000000,
	}}
	service.SyncMessageHistory(ctx, tc, "100", "200", msgs)

	var stored chat.ChatMessage
	if err := r.db.Where("tenant_id = ? AND message_id = ?", 1, "wamid.media").First(&stored).Error; err != nil {
		t.Fatalf("find message: %v", err)
	}
	if stored.Body != "Image message" {
		t.Fatalf("expected type placeholder body, got %q", stored.Body)
	}
}

func TestSyncMessageHistoryMissingTimestamp(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	before := time.Now().UTC().Add(-time.Minute)
	counts := service.SyncMessageHistory(ctx, tc, "100", "200", []webhook.HistoryMessage{
		historyMessage("wamid.noclock", "15550001111", "100", false, "no timestamp", 0),
	})
	if counts.Synced != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	var stored chat.ChatMessage
	if err := r.db.Where("tenant_id = ? AND message_id = ?", 1, "wamid.noclock").First(&stored).Error; err != nil {
		t.Fatalf("find message: %v", err)
	}
	if stored.SentAt.Before(before) {
		t.Fatalf("expected receive-time fallback, got sent_at %s", stored.SentAt)
	}
}

func TestProcessMessageEcho(t *testing.T) {
	r := newTestRepos(t)
	service := newMaterializer(r)
	ctx := context.Background()
	tc := tenant.Context{TenantID: 1}

	echo := webhook.EchoMessage{
		ID:        "wamid.echo1",
		From:      "100",
		To:        "15550001111",
		Type:      "text",
		Timestamp: time.Now().Unix(),
		Text:      &webhook.TextContent{Body: "sent from the phone"},
	}
	if err := service.ProcessMessageEcho(ctx, tc, "100", echo); err != nil {
		t.Fatalf("ProcessMessageEcho() unexpected error: %v", err)
	}

	var stored chat.ChatMessage
	if err := r.db.Where("tenant_id = ? AND message_id = ?", 1, "wamid.echo1").First(&stored).Error; err != nil {
		t.Fatalf("find message: %v", err)
	}
	if !stored.FromMe {
		t.Fatal("echo must be stored as from_me")
	}
	if stored.Type != chat.MessageTypeEcho {
		t.Fatalf("unexpected message type: %q", stored.Type)
	}

	// Redelivery does not duplicate.
	if err := service.ProcessMessageEcho(ctx, tc, "100", echo); err != nil {
		t.Fatalf("redelivery error: %v", err)
	}
	var total int64
	r.db.Model(&chat.ChatMessage{}).Where("tenant_id = ?", 1).Count(&total)
	if total != 1 {
		t.Fatalf("expected 1 stored echo, got %d", total)
	}
}
