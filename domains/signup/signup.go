package signup

import (
	"context"

	"github.com/kodecrm/wacoex/domains/tenant"
)

// Connection types accepted by the embedded signup flow.
const (
	ConnectionTypeNew         = "new"
	ConnectionTypeCoexistence = "coexistence"
)

// Machine-readable error codes returned to the caller. These abort the whole
// signup; best-effort steps surface as Warnings instead.
const (
	ErrCodeMissingTenantContext = "MISSING_TENANT_CONTEXT"
	ErrCodeMissingCredentials   = "MISSING_FACEBOOK_CREDENTIALS"
	ErrCodeMissingSessionData   = "MISSING_SESSION_DATA"
	ErrCodeMissingAuthCode      = "MISSING_AUTH_CODE"
	ErrCodeTokenExchangeFailed  = "TOKEN_EXCHANGE_FAILED"
	ErrCodeCoexWabaNotFound     = "COEXISTENCE_WABA_NOT_FOUND"
	ErrCodeWabaDetailsFailed    = "WABA_DETAILS_FAILED"
	ErrCodeNoPhoneNumber        = "NO_PHONE_NUMBER"
	ErrCodeSystemException      = "SYSTEM_EXCEPTION"
)

// Domain event names emitted on the bus.
const (
	EventSignupCompleted = "embedded_signup_completed"
	EventSignupFailed    = "embedded_signup_failed"
)

// Request is the typed embedded-signup payload, deserialized and validated at
// the HTTP boundary before reaching the orchestrator.
type Request struct {
	PhoneNumberID  string `json:"phone_number_id"`
	WabaID         string `json:"waba_id"`
	BusinessID     string `json:"business_id"`
	ConnectionType string `json:"connection_type"`
	AuthResponse   struct {
		Code string `json:"code"`
	} `json:"auth_response"`
}

// Warning records a best-effort step that failed without aborting the signup.
type Warning struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ConnectionData is the resolved provider identity returned on success.
type ConnectionData struct {
	WabaID        string `json:"waba_id"`
	PhoneNumberID string `json:"phone_number_id"`
	VerifiedName  string `json:"verified_name,omitempty"`
	DisplayNumber string `json:"display_number,omitempty"`
	PlatformType  string `json:"platform_type,omitempty"`
}

// Result is the structured outcome of ProcessSignup. It is always returned,
// never a raw error, so the transport layer can serialize it directly.
type Result struct {
	Success          bool            `json:"success"`
	ErrorCode        string          `json:"error_code,omitempty"`
	Message          string          `json:"message"`
	SuggestedActions []string        `json:"suggested_actions,omitempty"`
	Warnings         []Warning       `json:"warnings,omitempty"`
	Data             *ConnectionData `json:"data,omitempty"`
}

// CompletedEvent is the payload of EventSignupCompleted.
type CompletedEvent struct {
	Tenant        tenant.Context
	WabaID        string
	PhoneNumberID string
	AccessToken   string
}

type ISignupUsecase interface {
	// ProcessSignup runs the full embedded signup flow for the given tenant.
	// It never returns an error: every failure mode is folded into Result.
	ProcessSignup(ctx context.Context, tc tenant.Context, request Request) Result
	// IsAvailable reports whether the signup UI should be offered: provider
	// credentials configured and the tenant not already connected.
	IsAvailable(ctx context.Context, tc tenant.Context) (bool, error)
}
