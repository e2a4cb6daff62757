package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kodecrm/wacoex/domains/settings"
	domainSync "github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
)

func TestManualSyncContactsWithoutToken(t *testing.T) {
	r := newTestRepos(t)
	service := NewSyncService(r.sync, r.settings, &fakeMetaClient{})

	res := service.ManualSyncContacts(context.Background(), tenant.Context{TenantID: 1}, "100", "200")
	if res.Success {
		t.Fatal("expected failure without a stored access token")
	}
	if !strings.Contains(res.Message, "signup") {
		t.Fatalf("message should point at signup, got %q", res.Message)
	}
}

func TestManualSyncContactsMarksStarted(t *testing.T) {
	r := newTestRepos(t)
	client := &fakeMetaClient{}
	service := NewSyncService(r.sync, r.settings, client)
	ctx := context.Background()

	if err := r.settings.Save(ctx, 1, settings.KeyAccessToken, "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}

	res := service.ManualSyncContacts(ctx, tenant.Context{TenantID: 1}, "100", "200")
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if len(client.smbAppDataCalls) != 1 || client.smbAppDataCalls[0] != "smb_app_state_sync" {
		t.Fatalf("unexpected provider calls: %v", client.smbAppDataCalls)
	}

	status, err := r.sync.Get(ctx, 1, "100")
	if err != nil || status == nil {
		t.Fatalf("get sync status: %v (%v)", err, status)
	}
	if status.ContactsSyncStatus != domainSync.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", status.ContactsSyncStatus)
	}
	if status.ContactsSyncStartedAt == nil {
		t.Fatal("expected contacts_sync_started_at to be set")
	}
}

func TestManualSyncMessagesFallsBackToStoredPhone(t *testing.T) {
	r := newTestRepos(t)
	client := &fakeMetaClient{}
	service := NewSyncService(r.sync, r.settings, client)
	ctx := context.Background()

	if err := r.settings.SaveAll(ctx, 1, map[string]string{
		settings.KeyAccessToken:        "tok",
		settings.KeyDefaultPhoneNumber: "100",
		settings.KeyBusinessAccountID:  "200",
	}); err != nil {
		t.Fatalf("save all: %v", err)
	}

	res := service.ManualSyncMessages(ctx, tenant.Context{TenantID: 1}, "", "")
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}

	status, err := r.sync.Get(ctx, 1, "100")
	if err != nil || status == nil {
		t.Fatalf("expected sync status for stored phone, got %v (%v)", status, err)
	}
	if status.WabaID != "200" {
		t.Fatalf("expected waba id from settings, got %q", status.WabaID)
	}
	if status.HistorySyncStatus != domainSync.StatusInProgress {
		t.Fatalf("expected history in_progress, got %s", status.HistorySyncStatus)
	}
}

func TestManualSyncProviderFailureMarksFailed(t *testing.T) {
	r := newTestRepos(t)
	client := &fakeMetaClient{
		requestSMBAppData: func(_, _ string) error { return errors.New("rate limited") },
	}
	service := NewSyncService(r.sync, r.settings, client)
	ctx := context.Background()

	if err := r.settings.Save(ctx, 1, settings.KeyAccessToken, "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}

	res := service.ManualSyncContacts(ctx, tenant.Context{TenantID: 1}, "100", "200")
	if res.Success {
		t.Fatal("expected failure when the provider rejects the request")
	}

	status, err := r.sync.Get(ctx, 1, "100")
	if err != nil || status == nil {
		t.Fatalf("get sync status: %v (%v)", err, status)
	}
	if status.ContactsSyncStatus != domainSync.StatusFailed {
		t.Fatalf("expected failed, got %s", status.ContactsSyncStatus)
	}
	if !strings.Contains(status.LastSyncError, "rate limited") {
		t.Fatalf("expected last_sync_error to carry the cause, got %q", status.LastSyncError)
	}
}

func TestStatusNotFound(t *testing.T) {
	r := newTestRepos(t)
	service := NewSyncService(r.sync, r.settings, &fakeMetaClient{})

	_, err := service.Status(context.Background(), tenant.Context{TenantID: 1}, "999")
	if err == nil {
		t.Fatal("expected error for unknown phone number id")
	}
	var notFound pkgError.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}
