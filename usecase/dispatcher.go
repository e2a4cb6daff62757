package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kodecrm/wacoex/domains/chat"
	"github.com/kodecrm/wacoex/domains/settings"
	"github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	"github.com/kodecrm/wacoex/domains/webhook"
	"github.com/sirupsen/logrus"
)

type serviceDispatcher struct {
	syncRepo     sync.ISyncStatusRepository
	settingsRepo settings.ISettingsRepository
	tenantRepo   tenant.ITenantRepository
	materializer chat.IMaterializerUsecase
}

func NewDispatcherService(
	syncRepo sync.ISyncStatusRepository,
	settingsRepo settings.ISettingsRepository,
	tenantRepo tenant.ITenantRepository,
	materializer chat.IMaterializerUsecase,
) webhook.IWebhookUsecase {
	return &serviceDispatcher{
		syncRepo:     syncRepo,
		settingsRepo: settingsRepo,
		tenantRepo:   tenantRepo,
		materializer: materializer,
	}
}

func (service *serviceDispatcher) Dispatch(ctx context.Context, field string, value webhook.Value, wabaID string) webhook.Result {
	switch field {
	case webhook.FieldHistory:
		return service.HandleHistory(ctx, value, wabaID)
	case webhook.FieldStateSync:
		return service.HandleStateSync(ctx, value, wabaID)
	case webhook.FieldMessageEchoes:
		return service.HandleMessageEchoes(ctx, value, wabaID)
	case webhook.FieldAccountUpdate:
		return service.HandleAccountUpdate(ctx, value, wabaID)
	default:
		logrus.Debugf("[WEBHOOK] ignoring unsupported field %q (waba %s)", field, wabaID)
		return webhook.Error(fmt.Sprintf("Unsupported webhook field: %s", field))
	}
}

func (service *serviceDispatcher) HandleHistory(ctx context.Context, value webhook.Value, wabaID string) webhook.Result {
	phoneNumberID := extractPhoneNumberID(value)
	if phoneNumberID == "" {
		return webhook.Error("Missing phone_number_id in history payload")
	}

	tc, err := service.resolveTenantByPhoneNumber(ctx, phoneNumberID)
	if err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] history: tenant resolution failed for %s", phoneNumberID)
		return webhook.Error("Tenant resolution failed: " + err.Error())
	}
	if !tc.Valid() {
		return webhook.Error("Tenant not found for phone number id " + phoneNumberID)
	}

	// A number resolved through the settings fallback may not have a sync
	// status row yet; progress and completion writes need one to land on.
	if _, err := service.syncRepo.Ensure(ctx, tc.TenantID, phoneNumberID, wabaID); err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] history: failed to ensure sync status for tenant %d", tc.TenantID)
	}

	progress := 0
	if value.Metadata != nil {
		progress = value.Metadata.Progress
	}
	if err := service.syncRepo.UpdateHistoryProgress(ctx, tc.TenantID, phoneNumberID, progress); err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] history: failed to update progress for tenant %d", tc.TenantID)
	}

	result := webhook.Success()
	if len(value.Messages) > 0 {
		counts := service.materializer.SyncMessageHistory(ctx, tc, phoneNumberID, wabaID, value.Messages)
		result.Synced = counts.Synced
		result.Skipped = counts.Skipped
		result.Errored = counts.Errored
	}

	if progress >= 100 {
		if err := service.syncRepo.MarkPhaseCompleted(ctx, tc.TenantID, phoneNumberID, sync.PhaseHistory, 0); err != nil {
			logrus.WithError(err).Errorf("[WEBHOOK] history: failed to mark completion for tenant %d", tc.TenantID)
		}
		logrus.Infof("[WEBHOOK] tenant %d: history sync completed for %s", tc.TenantID, phoneNumberID)
	}

	return result
}

func (service *serviceDispatcher) HandleStateSync(ctx context.Context, value webhook.Value, wabaID string) webhook.Result {
	phoneNumberID := extractPhoneNumberID(value)
	if phoneNumberID == "" {
		return webhook.Error("Missing phone_number_id in state sync payload")
	}

	tc, err := service.resolveTenantByPhoneNumber(ctx, phoneNumberID)
	if err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] state sync: tenant resolution failed for %s", phoneNumberID)
		return webhook.Error("Tenant resolution failed: " + err.Error())
	}
	if !tc.Valid() {
		return webhook.Error("Tenant not found for phone number id " + phoneNumberID)
	}

	if _, err := service.syncRepo.Ensure(ctx, tc.TenantID, phoneNumberID, wabaID); err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] state sync: failed to ensure sync status for tenant %d", tc.TenantID)
	}

	counts := service.materializer.SyncContacts(ctx, tc, phoneNumberID, wabaID, value.Contacts)

	result := webhook.Success()
	result.Synced = counts.Synced
	result.Skipped = counts.Skipped
	result.Errored = counts.Errored
	return result
}

func (service *serviceDispatcher) HandleMessageEchoes(ctx context.Context, value webhook.Value, wabaID string) webhook.Result {
	phoneNumberID := extractPhoneNumberID(value)
	if phoneNumberID == "" {
		return webhook.Error("Missing phone_number_id in message echo payload")
	}

	tc, err := service.resolveTenantByPhoneNumber(ctx, phoneNumberID)
	if err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] echoes: tenant resolution failed for %s", phoneNumberID)
		return webhook.Error("Tenant resolution failed: " + err.Error())
	}
	if !tc.Valid() {
		return webhook.Error("Tenant not found for phone number id " + phoneNumberID)
	}

	result := webhook.Success()
	for _, echo := range value.MessageEchoes {
		if err := service.materializer.ProcessMessageEcho(ctx, tc, phoneNumberID, echo); err != nil {
			logrus.WithError(err).Errorf("[WEBHOOK] tenant %d: failed to process echo %s", tc.TenantID, echo.ID)
			result.Errored++
			continue
		}
		result.Synced++
	}
	return result
}

// HandleAccountUpdate records provider account notifications. A DISABLED or
// banned account flips the tenant's connected flag off; nothing is deleted.
func (service *serviceDispatcher) HandleAccountUpdate(ctx context.Context, value webhook.Value, wabaID string) webhook.Result {
	event := strings.ToUpper(strings.TrimSpace(value.Event))
	logrus.Infof("[WEBHOOK] account update for waba %s: event=%s", wabaID, event)

	if event != "DISABLED" && event != "ACCOUNT_BANNED" {
		return webhook.Success()
	}

	tenantIDs, err := service.settingsRepo.FindTenantsByValue(ctx, settings.KeyBusinessAccountID, wabaID)
	if err != nil {
		logrus.WithError(err).Errorf("[WEBHOOK] account update: tenant lookup failed for waba %s", wabaID)
		return webhook.Error("Tenant resolution failed: " + err.Error())
	}
	if len(tenantIDs) == 0 {
		return webhook.Error("Tenant not found for waba id " + wabaID)
	}

	for _, id := range tenantIDs {
		if err := service.settingsRepo.Save(ctx, id, settings.KeyIsConnected, "false"); err != nil {
			logrus.WithError(err).Errorf("[WEBHOOK] account update: failed to disconnect tenant %d", id)
		} else {
			logrus.Warnf("[WEBHOOK] tenant %d marked disconnected (waba %s %s)", id, wabaID, event)
		}
	}
	return webhook.Success()
}

// resolveTenantByPhoneNumber finds the owning tenant of a provider phone
// number id: first via the sync status table, then by scanning stored tenant
// settings. The settings scan is linear in tenant count; it only runs for
// numbers that never had a sync status row.
func (service *serviceDispatcher) resolveTenantByPhoneNumber(ctx context.Context, phoneNumberID string) (tenant.Context, error) {
	tenantID, err := service.syncRepo.FindTenantByPhoneNumber(ctx, phoneNumberID)
	if err != nil {
		return tenant.Context{}, err
	}

	if tenantID == 0 {
		ids, err := service.settingsRepo.FindTenantsByValue(ctx, settings.KeyDefaultPhoneNumber, phoneNumberID)
		if err != nil {
			return tenant.Context{}, err
		}
		if len(ids) > 0 {
			tenantID = ids[0]
		}
	}

	if tenantID == 0 {
		return tenant.Context{}, nil
	}

	tc := tenant.Context{TenantID: tenantID}
	if t, err := service.tenantRepo.GetByID(ctx, tenantID); err == nil {
		tc.Subdomain = t.Subdomain
	}
	return tc, nil
}

func extractPhoneNumberID(value webhook.Value) string {
	if v := strings.TrimSpace(value.PhoneNumberID); v != "" {
		return v
	}
	if value.Metadata != nil {
		return strings.TrimSpace(value.Metadata.PhoneNumberID)
	}
	return ""
}
