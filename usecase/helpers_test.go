package usecase

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/kodecrm/wacoex/domains/meta"
	"github.com/kodecrm/wacoex/infrastructure/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

type repos struct {
	db       *gorm.DB
	tenants  *store.TenantRepository
	settings *store.SettingsRepository
	sync     *store.SyncStatusRepository
	chats    *store.ChatStorageRepository
	bus      EventBus.Bus
}

func newTestRepos(t *testing.T) repos {
	t.Helper()
	db := newTestDB(t)
	return repos{
		db:       db,
		tenants:  store.NewTenantRepository(db),
		settings: store.NewSettingsRepository(db),
		sync:     store.NewSyncStatusRepository(db),
		chats:    store.NewChatStorageRepository(db),
		bus:      EventBus.New(),
	}
}

// fakeMetaClient stubs the Graph API. Unset hooks behave as plain successes.
type fakeMetaClient struct {
	exchangeCode      func(appID, appSecret, code string) (*meta.TokenResponse, error)
	getPhoneNumber    func(phoneNumberID string) (*meta.PhoneNumber, error)
	listPhoneNumbers  func(wabaID string) ([]meta.PhoneNumber, error)
	registerPhone     func(phoneNumberID, pin string) error
	subscribeApp      func(wabaID string) error
	listTemplates     func(wabaID string) ([]meta.Template, error)
	requestSMBAppData func(phoneNumberID, syncType string) error

	smbAppDataCalls []string
}

var _ meta.IClient = (*fakeMetaClient)(nil)

func (f *fakeMetaClient) ExchangeCode(_ context.Context, appID, appSecret, code string) (*meta.TokenResponse, error) {
	if f.exchangeCode != nil {
		return f.exchangeCode(appID, appSecret, code)
	}
	return &meta.TokenResponse{AccessToken: "tok-test"}, nil
}

func (f *fakeMetaClient) GetPhoneNumber(_ context.Context, phoneNumberID, _ string) (*meta.PhoneNumber, error) {
	if f.getPhoneNumber != nil {
		return f.getPhoneNumber(phoneNumberID)
	}
	return &meta.PhoneNumber{
		ID:                 phoneNumberID,
		VerifiedName:       "Test Business",
		DisplayPhoneNumber: "+1 555-0100",
		PlatformType:       "SMB_APP",
	}, nil
}

func (f *fakeMetaClient) ListPhoneNumbers(_ context.Context, wabaID, _ string) ([]meta.PhoneNumber, error) {
	if f.listPhoneNumbers != nil {
		return f.listPhoneNumbers(wabaID)
	}
	return []meta.PhoneNumber{{ID: "100", VerifiedName: "Test Business"}}, nil
}

func (f *fakeMetaClient) RegisterPhone(_ context.Context, phoneNumberID, _, pin string) error {
	if f.registerPhone != nil {
		return f.registerPhone(phoneNumberID, pin)
	}
	return nil
}

func (f *fakeMetaClient) SubscribeApp(_ context.Context, wabaID, _ string) error {
	if f.subscribeApp != nil {
		return f.subscribeApp(wabaID)
	}
	return nil
}

func (f *fakeMetaClient) ListTemplates(_ context.Context, wabaID, _ string) ([]meta.Template, error) {
	if f.listTemplates != nil {
		return f.listTemplates(wabaID)
	}
	return []meta.Template{{ID: "t1", Name: "hello_world", Status: "APPROVED"}}, nil
}

func (f *fakeMetaClient) RequestSMBAppData(_ context.Context, phoneNumberID, _, syncType string) error {
	f.smbAppDataCalls = append(f.smbAppDataCalls, syncType)
	if f.requestSMBAppData != nil {
		return f.requestSMBAppData(phoneNumberID, syncType)
	}
	return nil
}
