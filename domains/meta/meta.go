package meta

import "context"

// Sync types accepted by the provider's smb_app_data endpoint.
const (
	SyncTypeStateSync = "smb_app_state_sync"
	SyncTypeHistory   = "history"
)

// PlatformTypeCloudAPI marks a phone number already registered for Cloud API.
const PlatformTypeCloudAPI = "CLOUD_API"

// TokenResponse is the OAuth code exchange result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// PhoneNumber describes a WABA phone number as returned by the Graph API.
type PhoneNumber struct {
	ID                 string `json:"id"`
	VerifiedName       string `json:"verified_name"`
	DisplayPhoneNumber string `json:"display_phone_number"`
	PlatformType       string `json:"platform_type"`
	QualityRating      string `json:"quality_rating,omitempty"`
}

// Template is a pre-approved message template.
type Template struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Category string `json:"category"`
	Language string `json:"language"`
}

// IClient wraps every outbound call to the provider's Graph API.
type IClient interface {
	// ExchangeCode trades an embedded-signup authorization code for an
	// access token.
	ExchangeCode(ctx context.Context, appID, appSecret, code string) (*TokenResponse, error)
	// GetPhoneNumber fetches display details for a phone number id.
	GetPhoneNumber(ctx context.Context, phoneNumberID, accessToken string) (*PhoneNumber, error)
	// ListPhoneNumbers lists the phone numbers attached to a WABA.
	ListPhoneNumbers(ctx context.Context, wabaID, accessToken string) ([]PhoneNumber, error)
	// RegisterPhone registers a phone number for Cloud API messaging.
	RegisterPhone(ctx context.Context, phoneNumberID, accessToken, pin string) error
	// SubscribeApp subscribes the application to the WABA's webhooks.
	SubscribeApp(ctx context.Context, wabaID, accessToken string) error
	// ListTemplates loads the WABA's message templates.
	ListTemplates(ctx context.Context, wabaID, accessToken string) ([]Template, error)
	// RequestSMBAppData asks the provider to start delivering coexistence
	// sync data (contacts or message history) via webhooks.
	RequestSMBAppData(ctx context.Context, phoneNumberID, accessToken, syncType string) error
}
