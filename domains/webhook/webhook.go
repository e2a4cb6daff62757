package webhook

import "context"

// Event field names delivered by the provider.
const (
	FieldHistory       = "history"
	FieldStateSync     = "smb_app_state_sync"
	FieldMessageEchoes = "smb_message_echoes"
	FieldAccountUpdate = "account_update"
)

// Dispatch result statuses. Per-event failures are reported, not raised, so
// the transport can still acknowledge the delivery.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Domain event names emitted on the bus after materialization.
const (
	EventContactsSynced = "coexistence_contacts_synced"
	EventHistorySynced  = "coexistence_history_synced"
)

// Envelope is the outer provider callback payload.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"` // WABA id
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string `json:"field"`
	Value Value  `json:"value"`
}

// Value is the union of all change payloads; the Field on the enclosing
// Change decides which members are populated.
type Value struct {
	MessagingProduct string           `json:"messaging_product,omitempty"`
	Metadata         *Metadata        `json:"metadata,omitempty"`
	PhoneNumberID    string           `json:"phone_number_id,omitempty"`
	Messages         []HistoryMessage `json:"messages,omitempty"`
	Contacts         []SyncContact    `json:"contacts,omitempty"`
	MessageEchoes    []EchoMessage    `json:"message_echoes,omitempty"`
	Event            string           `json:"event,omitempty"`
	BanInfo          *BanInfo         `json:"ban_info,omitempty"`
}

type Metadata struct {
	PhoneNumberID      string `json:"phone_number_id"`
	DisplayPhoneNumber string `json:"display_phone_number,omitempty"`
	// Progress is the history sync completion percentage (0-100).
	Progress int `json:"progress,omitempty"`
	Phase    int `json:"phase,omitempty"`
}

// HistoryMessage is one historical conversation message delivered during a
// coexistence history sync.
type HistoryMessage struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Timestamp int64        `json:"timestamp,string"`
	Type      string       `json:"type"`
	FromMe    bool         `json:"from_me"`
	Text      *TextContent `json:"text,omitempty"`
	Body      string       `json:"body,omitempty"`
}

type TextContent struct {
	Body string `json:"body"`
}

// SyncContact is one address-book entry delivered during a contact state sync.
type SyncContact struct {
	WaID    string   `json:"wa_id"`
	Phone   string   `json:"phone,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
	Action  string   `json:"action,omitempty"`
}

type Profile struct {
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// EchoMessage is a real-time copy of an outbound message the business sent
// from the WhatsApp Business App.
type EchoMessage struct {
	ID        string       `json:"id"`
	From      string       `json:"from"`
	To        string       `json:"to"`
	Timestamp int64        `json:"timestamp,string"`
	Type      string       `json:"type"`
	Text      *TextContent `json:"text,omitempty"`
	Body      string       `json:"body,omitempty"`
}

type BanInfo struct {
	WabaBanState string `json:"waba_ban_state,omitempty"`
	WabaBanDate  string `json:"waba_ban_date,omitempty"`
}

// Result is returned by every handler. Handlers never raise on bad payloads
// or unknown tenants; they report the failure so the caller can log it and
// still acknowledge the provider.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Synced  int    `json:"synced,omitempty"`
	Skipped int    `json:"skipped,omitempty"`
	Errored int    `json:"errored,omitempty"`
}

func Success() Result {
	return Result{Status: StatusSuccess}
}

func Error(message string) Result {
	return Result{Status: StatusError, Message: message}
}

// IWebhookUsecase routes provider callbacks to their handlers.
type IWebhookUsecase interface {
	Dispatch(ctx context.Context, field string, value Value, wabaID string) Result
	HandleHistory(ctx context.Context, value Value, wabaID string) Result
	HandleStateSync(ctx context.Context, value Value, wabaID string) Result
	HandleMessageEchoes(ctx context.Context, value Value, wabaID string) Result
	HandleAccountUpdate(ctx context.Context, value Value, wabaID string) Result
}
