package settings

import (
	"context"
	"time"
)

// AdminTenantID owns platform-wide settings such as the Meta app credentials.
const AdminTenantID int64 = 0

// Setting keys written by the signup flow and read by every outbound call.
const (
	KeyAccessToken        = "wm_access_token"
	KeyBusinessAccountID  = "wm_business_account_id"
	KeyDefaultPhoneNumber = "wm_default_phone_number_id"
	KeyVerifiedName       = "wm_phone_number_verified_name"
	KeyDisplayNumber      = "wm_phone_number_display"
	KeyIsConnected        = "wm_is_connected"
	KeyIsWebhookConnected = "wm_is_webhook_connected"
	KeyTemplatesLoaded    = "wm_templates_loaded"
	KeyConnectedAt        = "wm_connected_at"
	KeySignupRawPayload   = "wm_signup_raw_payload"

	// Admin-scope keys (tenant 0).
	KeyFacebookAppID     = "wm_fb_app_id"
	KeyFacebookAppSecret = "wm_fb_app_secret"
	KeyFacebookConfigID  = "wm_fb_config_id"
)

// TenantSetting is one key/value pair scoped to a tenant. Tenant 0 holds the
// platform-wide admin settings.
type TenantSetting struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	TenantID  int64     `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_tenant_setting_key"`
	Key       string    `json:"key" gorm:"column:key;not null;uniqueIndex:idx_tenant_setting_key"`
	Value     string    `json:"value" gorm:"column:value;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (TenantSetting) TableName() string { return "tenant_settings" }

// ISettingsRepository is the tenant-scoped key/value settings store.
type ISettingsRepository interface {
	Get(ctx context.Context, tenantID int64, key string) (string, error)
	GetBool(ctx context.Context, tenantID int64, key string) bool
	Save(ctx context.Context, tenantID int64, key, value string) error
	SaveAll(ctx context.Context, tenantID int64, values map[string]string) error
	// FindTenantsByValue returns the tenant ids whose setting `key` equals
	// `value`. Used as the last-resort reverse lookup of webhook events.
	FindTenantsByValue(ctx context.Context, key, value string) ([]int64, error)
}
