package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/kodecrm/wacoex/core/config"
	"github.com/kodecrm/wacoex/domains/meta"
	"github.com/kodecrm/wacoex/domains/settings"
	"github.com/kodecrm/wacoex/domains/signup"
	"github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	"github.com/sirupsen/logrus"
)

type serviceSignup struct {
	settingsRepo settings.ISettingsRepository
	syncRepo     sync.ISyncStatusRepository
	syncUsecase  sync.ISyncUsecase
	metaClient   meta.IClient
	metaConfig   config.MetaConfig
	bus          EventBus.Bus
}

func NewSignupService(
	settingsRepo settings.ISettingsRepository,
	syncRepo sync.ISyncStatusRepository,
	syncUsecase sync.ISyncUsecase,
	metaClient meta.IClient,
	metaConfig config.MetaConfig,
	bus EventBus.Bus,
) signup.ISignupUsecase {
	return &serviceSignup{
		settingsRepo: settingsRepo,
		syncRepo:     syncRepo,
		syncUsecase:  syncUsecase,
		metaClient:   metaClient,
		metaConfig:   metaConfig,
		bus:          bus,
	}
}

// ProcessSignup runs the embedded signup flow. Required steps abort with a
// machine-readable error code; best-effort steps are recorded as warnings on
// the result. Nothing escapes as a panic or raw error.
func (service *serviceSignup) ProcessSignup(ctx context.Context, tc tenant.Context, request signup.Request) (result signup.Result) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[SIGNUP] tenant %d: unexpected panic: %v\n%s", tc.TenantID, r, debug.Stack())
			service.bus.Publish(signup.EventSignupFailed, tc, fmt.Sprintf("%v", r))
			result = signup.Result{
				Success:   false,
				ErrorCode: signup.ErrCodeSystemException,
				Message:   "An unexpected error occurred during signup",
				SuggestedActions: []string{
					"Retry the signup flow",
					"Check the application logs for details",
				},
			}
		}
	}()

	// Step 1: tenant context. Resolution happens at the boundary; core logic
	// only checks it arrived.
	if !tc.Valid() {
		return failure(signup.ErrCodeMissingTenantContext, "Unable to determine the tenant for this signup",
			"Open the signup flow from your tenant dashboard",
			"Verify the tenant subdomain is configured")
	}

	// Step 2: provider app credentials.
	appID, appSecret := service.appCredentials(ctx)
	if appID == "" || appSecret == "" {
		return failure(signup.ErrCodeMissingCredentials, "Facebook application credentials are not configured",
			"Set the Facebook app id and secret in the admin settings",
			"Contact your platform administrator")
	}

	// Step 3: per-connection-type input requirements.
	code := request.AuthResponse.Code
	isCoexistence := request.ConnectionType == signup.ConnectionTypeCoexistence
	if isCoexistence {
		if code == "" {
			return failure(signup.ErrCodeMissingAuthCode, "Authorization code is missing from the signup response",
				"Restart the embedded signup flow")
		}
	} else {
		if request.PhoneNumberID == "" || request.WabaID == "" || code == "" {
			return failure(signup.ErrCodeMissingSessionData, "Signup session data is incomplete",
				"Restart the embedded signup flow",
				"Ensure popups are not blocked during signup")
		}
	}

	// Step 4: exchange the authorization code for an access token.
	token, err := service.metaClient.ExchangeCode(ctx, appID, appSecret, code)
	if err != nil {
		logrus.WithError(err).Errorf("[SIGNUP] tenant %d: token exchange failed", tc.TenantID)
		return failure(signup.ErrCodeTokenExchangeFailed, "Could not exchange the authorization code for an access token",
			"Restart the embedded signup flow",
			"Verify the Facebook app credentials")
	}

	// Coexistence connections carry no phone number id in the session; it is
	// resolved from the WABA's phone number list.
	wabaID, phoneNumberID := request.WabaID, request.PhoneNumberID
	if isCoexistence {
		if wabaID == "" {
			return failure(signup.ErrCodeCoexWabaNotFound, "No WhatsApp Business Account id found in the signup data",
				"Restart the embedded signup flow")
		}
		if phoneNumberID == "" {
			numbers, err := service.metaClient.ListPhoneNumbers(ctx, wabaID, token.AccessToken)
			if err != nil {
				logrus.WithError(err).Errorf("[SIGNUP] tenant %d: waba %s phone number lookup failed", tc.TenantID, wabaID)
				return failure(signup.ErrCodeWabaDetailsFailed, "Could not load the business account details",
					"Retry the signup flow")
			}
			if len(numbers) == 0 {
				return failure(signup.ErrCodeNoPhoneNumber, "The business account has no phone numbers",
					"Add a phone number to the WhatsApp Business Account and retry")
			}
			phoneNumberID = numbers[0].ID
		}
	}

	var warnings []signup.Warning
	data := &signup.ConnectionData{WabaID: wabaID, PhoneNumberID: phoneNumberID}

	// Step 5: enrich display data, best effort.
	if pn, err := service.metaClient.GetPhoneNumber(ctx, phoneNumberID, token.AccessToken); err != nil {
		logrus.WithError(err).Warnf("[SIGNUP] tenant %d: phone number enrichment failed", tc.TenantID)
		warnings = append(warnings, signup.Warning{Step: "phone_details", Message: err.Error()})
	} else {
		data.VerifiedName = pn.VerifiedName
		data.DisplayNumber = pn.DisplayPhoneNumber
		data.PlatformType = pn.PlatformType
	}

	// Step 6: register the number for Cloud API when it is not already, best
	// effort.
	if data.PlatformType != "" && data.PlatformType != meta.PlatformTypeCloudAPI {
		if err := service.metaClient.RegisterPhone(ctx, phoneNumberID, token.AccessToken, defaultRegistrationPin); err != nil {
			logrus.WithError(err).Warnf("[SIGNUP] tenant %d: cloud api registration failed", tc.TenantID)
			warnings = append(warnings, signup.Warning{Step: "phone_registration", Message: err.Error()})
		}
	}

	// Step 7: webhook subscription. Failure is recorded, not fatal.
	webhookConnected := true
	if err := service.metaClient.SubscribeApp(ctx, wabaID, token.AccessToken); err != nil {
		logrus.WithError(err).Warnf("[SIGNUP] tenant %d: webhook subscription failed", tc.TenantID)
		warnings = append(warnings, signup.Warning{Step: "webhook_subscription", Message: err.Error()})
		webhookConnected = false
	}

	// Step 8: persist the tenant connection. The raw payload is kept for
	// audit.
	rawPayload, _ := json.Marshal(request)
	values := map[string]string{
		settings.KeyAccessToken:        token.AccessToken,
		settings.KeyBusinessAccountID:  wabaID,
		settings.KeyDefaultPhoneNumber: phoneNumberID,
		settings.KeyVerifiedName:       data.VerifiedName,
		settings.KeyDisplayNumber:      data.DisplayNumber,
		settings.KeyIsWebhookConnected: fmt.Sprintf("%t", webhookConnected),
		settings.KeySignupRawPayload:   string(rawPayload),
	}
	if err := service.settingsRepo.SaveAll(ctx, tc.TenantID, values); err != nil {
		logrus.WithError(err).Errorf("[SIGNUP] tenant %d: failed to persist connection settings", tc.TenantID)
		service.bus.Publish(signup.EventSignupFailed, tc, err.Error())
		return failure(signup.ErrCodeSystemException, "Failed to store the connection settings",
			"Retry the signup flow")
	}

	// Step 9: load message templates, best effort.
	templatesLoaded := true
	if _, err := service.metaClient.ListTemplates(ctx, wabaID, token.AccessToken); err != nil {
		logrus.WithError(err).Warnf("[SIGNUP] tenant %d: template load failed", tc.TenantID)
		warnings = append(warnings, signup.Warning{Step: "template_load", Message: err.Error()})
		templatesLoaded = false
	}
	if err := service.settingsRepo.Save(ctx, tc.TenantID, settings.KeyTemplatesLoaded, fmt.Sprintf("%t", templatesLoaded)); err != nil {
		logrus.WithError(err).Warnf("[SIGNUP] tenant %d: failed to persist templates flag", tc.TenantID)
	}

	// Step 10: mark connected and seed the sync tracker.
	if err := service.settingsRepo.Save(ctx, tc.TenantID, settings.KeyIsConnected, "true"); err != nil {
		logrus.WithError(err).Errorf("[SIGNUP] tenant %d: failed to mark connection", tc.TenantID)
		warnings = append(warnings, signup.Warning{Step: "mark_connected", Message: err.Error()})
	} else if err := service.settingsRepo.Save(ctx, tc.TenantID, settings.KeyConnectedAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
		logrus.WithError(err).Warnf("[SIGNUP] tenant %d: failed to record connection time", tc.TenantID)
		warnings = append(warnings, signup.Warning{Step: "mark_connected", Message: err.Error()})
	}

	if _, err := service.syncRepo.Ensure(ctx, tc.TenantID, phoneNumberID, wabaID); err != nil {
		logrus.WithError(err).Errorf("[SIGNUP] tenant %d: failed to create sync status", tc.TenantID)
		warnings = append(warnings, signup.Warning{Step: "sync_status", Message: err.Error()})
	}

	// Coexistence numbers have historical data on the phone; ask the
	// provider to start both sync jobs.
	if isCoexistence {
		if res := service.syncUsecase.ManualSyncContacts(ctx, tc, phoneNumberID, wabaID); !res.Success {
			warnings = append(warnings, signup.Warning{Step: "contacts_sync_request", Message: res.Message})
		}
		if res := service.syncUsecase.ManualSyncMessages(ctx, tc, phoneNumberID, wabaID); !res.Success {
			warnings = append(warnings, signup.Warning{Step: "history_sync_request", Message: res.Message})
		}
	}

	service.bus.Publish(signup.EventSignupCompleted, signup.CompletedEvent{
		Tenant:        tc,
		WabaID:        wabaID,
		PhoneNumberID: phoneNumberID,
		AccessToken:   token.AccessToken,
	})
	logrus.Infof("[SIGNUP] tenant %d: connected waba %s phone %s (%s)", tc.TenantID, wabaID, phoneNumberID, request.ConnectionType)

	return signup.Result{
		Success:  true,
		Message:  "WhatsApp Business account connected",
		Warnings: warnings,
		Data:     data,
	}
}

func (service *serviceSignup) IsAvailable(ctx context.Context, tc tenant.Context) (bool, error) {
	if !tc.Valid() {
		return false, nil
	}
	appID, appSecret := service.appCredentials(ctx)
	if appID == "" || appSecret == "" {
		return false, nil
	}
	return !service.settingsRepo.GetBool(ctx, tc.TenantID, settings.KeyIsConnected), nil
}

// appCredentials reads the provider app credentials from the admin settings
// store, falling back to the environment configuration.
func (service *serviceSignup) appCredentials(ctx context.Context) (string, string) {
	appID, _ := service.settingsRepo.Get(ctx, settings.AdminTenantID, settings.KeyFacebookAppID)
	appSecret, _ := service.settingsRepo.Get(ctx, settings.AdminTenantID, settings.KeyFacebookAppSecret)
	if appID == "" {
		appID = service.metaConfig.AppID
	}
	if appSecret == "" {
		appSecret = service.metaConfig.AppSecret
	}
	return appID, appSecret
}

// defaultRegistrationPin is the two-step verification pin used when
// registering a number for the Cloud API.
const defaultRegistrationPin = "000000"

func failure(code, message string, actions ...string) signup.Result {
	return signup.Result{
		Success:          false,
		ErrorCode:        code,
		Message:          message,
		SuggestedActions: actions,
	}
}
