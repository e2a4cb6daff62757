package store

import (
	"context"
	"errors"
	"time"

	"github.com/kodecrm/wacoex/domains/sync"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncStatusRepository struct {
	db *gorm.DB
}

var _ sync.ISyncStatusRepository = (*SyncStatusRepository)(nil)

func NewSyncStatusRepository(db *gorm.DB) *SyncStatusRepository {
	return &SyncStatusRepository{db: db}
}

// Ensure upserts the (tenant, phone number) row. The unique index absorbs
// concurrent deliveries racing to create the same row.
func (r *SyncStatusRepository) Ensure(ctx context.Context, tenantID int64, phoneNumberID, wabaID string) (*sync.Status, error) {
	row := sync.Status{
		TenantID:           tenantID,
		PhoneNumberID:      phoneNumberID,
		WabaID:             wabaID,
		ContactsSyncStatus: sync.StatusPending,
		HistorySyncStatus:  sync.StatusPending,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "phone_number_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"waba_id", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, tenantID, phoneNumberID)
}

func (r *SyncStatusRepository) Get(ctx context.Context, tenantID int64, phoneNumberID string) (*sync.Status, error) {
	var row sync.Status
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone_number_id = ?", tenantID, phoneNumberID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *SyncStatusRepository) FindTenantByPhoneNumber(ctx context.Context, phoneNumberID string) (int64, error) {
	var row sync.Status
	err := r.db.WithContext(ctx).
		Where("phone_number_id = ?", phoneNumberID).
		Order("updated_at DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.TenantID, nil
}

func (r *SyncStatusRepository) MarkPhaseStarted(ctx context.Context, tenantID int64, phoneNumberID, phase string) error {
	now := time.Now().UTC()
	updates := map[string]any{"last_sync_error": ""}
	switch phase {
	case sync.PhaseContacts:
		updates["contacts_sync_status"] = sync.StatusInProgress
		updates["contacts_sync_started_at"] = now
	case sync.PhaseHistory:
		updates["history_sync_status"] = sync.StatusInProgress
		updates["history_sync_started_at"] = now
	}
	return r.update(ctx, tenantID, phoneNumberID, updates)
}

func (r *SyncStatusRepository) MarkPhaseCompleted(ctx context.Context, tenantID int64, phoneNumberID, phase string, syncedCount int) error {
	now := time.Now().UTC()
	updates := map[string]any{}
	switch phase {
	case sync.PhaseContacts:
		updates["contacts_sync_status"] = sync.StatusCompleted
		updates["contacts_sync_completed_at"] = now
		if syncedCount > 0 {
			updates["total_contacts_synced"] = gorm.Expr("total_contacts_synced + ?", syncedCount)
		}
	case sync.PhaseHistory:
		updates["history_sync_status"] = sync.StatusCompleted
		updates["history_sync_completed_at"] = now
		updates["history_sync_progress"] = 100
		if syncedCount > 0 {
			updates["total_messages_synced"] = gorm.Expr("total_messages_synced + ?", syncedCount)
		}
	}
	return r.update(ctx, tenantID, phoneNumberID, updates)
}

func (r *SyncStatusRepository) MarkPhaseFailed(ctx context.Context, tenantID int64, phoneNumberID, phase, reason string) error {
	updates := map[string]any{"last_sync_error": reason}
	switch phase {
	case sync.PhaseContacts:
		updates["contacts_sync_status"] = sync.StatusFailed
	case sync.PhaseHistory:
		updates["history_sync_status"] = sync.StatusFailed
	}
	return r.update(ctx, tenantID, phoneNumberID, updates)
}

func (r *SyncStatusRepository) UpdateHistoryProgress(ctx context.Context, tenantID int64, phoneNumberID string, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return r.update(ctx, tenantID, phoneNumberID, map[string]any{
		"history_sync_status":   sync.StatusInProgress,
		"history_sync_progress": progress,
	})
}

func (r *SyncStatusRepository) AddSyncedCounts(ctx context.Context, tenantID int64, phoneNumberID string, contacts, messages int) error {
	updates := map[string]any{}
	if contacts > 0 {
		updates["total_contacts_synced"] = gorm.Expr("total_contacts_synced + ?", contacts)
	}
	if messages > 0 {
		updates["total_messages_synced"] = gorm.Expr("total_messages_synced + ?", messages)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, tenantID, phoneNumberID, updates)
}

func (r *SyncStatusRepository) update(ctx context.Context, tenantID int64, phoneNumberID string, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&sync.Status{}).
		Where("tenant_id = ? AND phone_number_id = ?", tenantID, phoneNumberID).
		Updates(updates).Error
}
