package usecase

import (
	"context"
	"fmt"

	"github.com/kodecrm/wacoex/domains/meta"
	"github.com/kodecrm/wacoex/domains/settings"
	"github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
	"github.com/sirupsen/logrus"
)

type serviceSync struct {
	syncRepo     sync.ISyncStatusRepository
	settingsRepo settings.ISettingsRepository
	metaClient   meta.IClient
}

func NewSyncService(syncRepo sync.ISyncStatusRepository, settingsRepo settings.ISettingsRepository, metaClient meta.IClient) sync.ISyncUsecase {
	return &serviceSync{
		syncRepo:     syncRepo,
		settingsRepo: settingsRepo,
		metaClient:   metaClient,
	}
}

func (service *serviceSync) ManualSyncContacts(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string) sync.TriggerResult {
	return service.trigger(ctx, tc, phoneNumberID, wabaID, sync.PhaseContacts, meta.SyncTypeStateSync)
}

func (service *serviceSync) ManualSyncMessages(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string) sync.TriggerResult {
	return service.trigger(ctx, tc, phoneNumberID, wabaID, sync.PhaseHistory, meta.SyncTypeHistory)
}

func (service *serviceSync) Status(ctx context.Context, tc tenant.Context, phoneNumberID string) (*sync.Status, error) {
	status, err := service.syncRepo.Get(ctx, tc.TenantID, phoneNumberID)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, pkgError.NotFoundError("no sync status for phone number id " + phoneNumberID)
	}
	return status, nil
}

// trigger asks the provider to start delivering sync data and moves the
// phase to in_progress. The actual data arrives later via webhooks.
func (service *serviceSync) trigger(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID, phase, syncType string) sync.TriggerResult {
	if !tc.Valid() {
		return sync.TriggerResult{Success: false, Message: "Missing tenant context"}
	}

	accessToken, err := service.settingsRepo.Get(ctx, tc.TenantID, settings.KeyAccessToken)
	if err != nil || accessToken == "" {
		return sync.TriggerResult{Success: false, Message: "Tenant has no stored access token; complete embedded signup first"}
	}

	if phoneNumberID == "" {
		phoneNumberID, _ = service.settingsRepo.Get(ctx, tc.TenantID, settings.KeyDefaultPhoneNumber)
	}
	if phoneNumberID == "" {
		return sync.TriggerResult{Success: false, Message: "No phone number id configured for tenant"}
	}
	if wabaID == "" {
		wabaID, _ = service.settingsRepo.Get(ctx, tc.TenantID, settings.KeyBusinessAccountID)
	}

	if _, err := service.syncRepo.Ensure(ctx, tc.TenantID, phoneNumberID, wabaID); err != nil {
		logrus.WithError(err).Errorf("[SYNC] tenant %d: failed to ensure status row", tc.TenantID)
		return sync.TriggerResult{Success: false, Message: "Failed to initialize sync status"}
	}

	if err := service.metaClient.RequestSMBAppData(ctx, phoneNumberID, accessToken, syncType); err != nil {
		logrus.WithError(err).Errorf("[SYNC] tenant %d: smb_app_data request failed (%s)", tc.TenantID, syncType)
		if markErr := service.syncRepo.MarkPhaseFailed(ctx, tc.TenantID, phoneNumberID, phase, err.Error()); markErr != nil {
			logrus.WithError(markErr).Errorf("[SYNC] tenant %d: failed to record sync failure", tc.TenantID)
		}
		return sync.TriggerResult{Success: false, Message: fmt.Sprintf("Provider sync request failed: %v", err)}
	}

	if err := service.syncRepo.MarkPhaseStarted(ctx, tc.TenantID, phoneNumberID, phase); err != nil {
		logrus.WithError(err).Errorf("[SYNC] tenant %d: failed to mark %s phase started", tc.TenantID, phase)
	}

	logrus.Infof("[SYNC] tenant %d: requested %s sync for %s", tc.TenantID, phase, phoneNumberID)
	return sync.TriggerResult{Success: true, Message: fmt.Sprintf("%s sync requested; data will arrive via webhooks", phase)}
}
