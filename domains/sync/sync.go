package sync

import (
	"context"
	"time"

	"github.com/kodecrm/wacoex/domains/tenant"
)

// Phase states. Each sync phase (contacts, history) moves through these
// independently.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Phase identifiers.
const (
	PhaseContacts = "contacts"
	PhaseHistory  = "history"
)

// Status tracks the progress of the two coexistence sync jobs for one
// (tenant, phone number) pair. Rows are upserted on that key and never
// deleted; they double as the audit trail.
type Status struct {
	ID                      int64      `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	TenantID                int64      `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_sync_tenant_phone"`
	PhoneNumberID           string     `json:"phone_number_id" gorm:"column:phone_number_id;not null;uniqueIndex:idx_sync_tenant_phone"`
	WabaID                  string     `json:"waba_id" gorm:"column:waba_id"`
	ContactsSyncStatus      string     `json:"contacts_sync_status" gorm:"column:contacts_sync_status;default:pending"`
	HistorySyncStatus       string     `json:"history_sync_status" gorm:"column:history_sync_status;default:pending"`
	HistorySyncProgress     int        `json:"history_sync_progress" gorm:"column:history_sync_progress;default:0"`
	TotalContactsSynced     int        `json:"total_contacts_synced" gorm:"column:total_contacts_synced;default:0"`
	TotalMessagesSynced     int        `json:"total_messages_synced" gorm:"column:total_messages_synced;default:0"`
	ContactsSyncStartedAt   *time.Time `json:"contacts_sync_started_at" gorm:"column:contacts_sync_started_at"`
	ContactsSyncCompletedAt *time.Time `json:"contacts_sync_completed_at" gorm:"column:contacts_sync_completed_at"`
	HistorySyncStartedAt    *time.Time `json:"history_sync_started_at" gorm:"column:history_sync_started_at"`
	HistorySyncCompletedAt  *time.Time `json:"history_sync_completed_at" gorm:"column:history_sync_completed_at"`
	LastSyncError           string     `json:"last_sync_error" gorm:"column:last_sync_error"`
	CreatedAt               time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Status) TableName() string { return "sync_statuses" }

// ISyncStatusRepository persists per-phone sync progress. Ensure upserts on
// (tenant_id, phone_number_id) so concurrent webhook deliveries cannot create
// duplicate rows.
type ISyncStatusRepository interface {
	Ensure(ctx context.Context, tenantID int64, phoneNumberID, wabaID string) (*Status, error)
	Get(ctx context.Context, tenantID int64, phoneNumberID string) (*Status, error)
	// FindTenantByPhoneNumber resolves the owning tenant of a phone number
	// id, or 0 when unknown.
	FindTenantByPhoneNumber(ctx context.Context, phoneNumberID string) (int64, error)
	MarkPhaseStarted(ctx context.Context, tenantID int64, phoneNumberID, phase string) error
	MarkPhaseCompleted(ctx context.Context, tenantID int64, phoneNumberID, phase string, syncedCount int) error
	MarkPhaseFailed(ctx context.Context, tenantID int64, phoneNumberID, phase, reason string) error
	UpdateHistoryProgress(ctx context.Context, tenantID int64, phoneNumberID string, progress int) error
	AddSyncedCounts(ctx context.Context, tenantID int64, phoneNumberID string, contacts, messages int) error
}

// ManualSyncRequest is the administrative re-trigger payload. Blank fields
// fall back to the tenant's stored identifiers.
type ManualSyncRequest struct {
	PhoneNumberID string `json:"phone_number_id"`
	WabaID        string `json:"waba_id"`
}

// TriggerResult reports a manual re-trigger outcome.
type TriggerResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ISyncUsecase exposes the administrative re-trigger entry points and status
// reads.
type ISyncUsecase interface {
	ManualSyncContacts(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string) TriggerResult
	ManualSyncMessages(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string) TriggerResult
	Status(ctx context.Context, tc tenant.Context, phoneNumberID string) (*Status, error)
}
