package chat

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// Contact classification.
const (
	ContactTypeLead     = "lead"
	ContactTypeCustomer = "customer"
)

// Message materialization types.
const (
	MessageTypeHistory = "coexistence_history"
	MessageTypeEcho    = "coexistence_echo"
)

// CoexistenceSourceName is the lazily-created source attached to contacts
// imported from the WhatsApp Business App.
const CoexistenceSourceName = "WhatsApp Business App Coexistence"

// Contact is a tenant-scoped lead/customer record. Phone is normalized and
// unique within the tenant; name fields are only backfilled when blank,
// never overwritten.
type Contact struct {
	ID          string         `json:"id" gorm:"primaryKey;column:id;type:text"`
	TenantID    int64          `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_contact_tenant_phone"`
	Phone       string         `json:"phone" gorm:"column:phone;not null;uniqueIndex:idx_contact_tenant_phone"`
	Firstname   string         `json:"firstname" gorm:"column:firstname"`
	Lastname    string         `json:"lastname" gorm:"column:lastname"`
	Type        string         `json:"type" gorm:"column:type;default:lead"`
	SourceID    string         `json:"source_id" gorm:"column:source_id;type:text"`
	StatusID    string         `json:"status_id" gorm:"column:status_id;type:text"`
	Description string         `json:"description" gorm:"column:description"`
	Metadata    datatypes.JSON `json:"metadata,omitempty" gorm:"column:metadata"`
	CreatedAt   time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Contact) TableName() string { return "contacts" }

// Source records where a contact came from.
type Source struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:text"`
	TenantID  int64     `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_source_tenant_name"`
	Name      string    `json:"name" gorm:"column:name;not null;uniqueIndex:idx_source_tenant_name"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Source) TableName() string { return "sources" }

// ContactStatus is a tenant-defined pipeline stage. The first IsDefault row
// is assigned to imported contacts; a "New" status is manufactured when a
// tenant has none.
type ContactStatus struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:text"`
	TenantID  int64     `json:"tenant_id" gorm:"column:tenant_id;not null;index"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	IsDefault bool      `json:"is_default" gorm:"column:is_default;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ContactStatus) TableName() string { return "statuses" }

// Chat is one conversation thread, keyed by the customer phone plus the
// contact it belongs to. LastMessage/LastMsgTime are denormalized from the
// newest ChatMessage and kept consistent on every insert.
type Chat struct {
	ID          string     `json:"id" gorm:"primaryKey;column:id;type:text"`
	TenantID    int64      `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_chat_key"`
	ReceiverID  string     `json:"receiver_id" gorm:"column:receiver_id;not null;uniqueIndex:idx_chat_key"`
	Type        string     `json:"type" gorm:"column:type;not null;uniqueIndex:idx_chat_key"`
	TypeID      string     `json:"type_id" gorm:"column:type_id;not null;uniqueIndex:idx_chat_key"`
	LastMessage string     `json:"last_message" gorm:"column:last_message"`
	LastMsgTime *time.Time `json:"last_msg_time" gorm:"column:last_msg_time"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Chat) TableName() string { return "chats" }

// ChatMessage is one materialized message. MessageID is the provider id and
// the dedup key: re-delivery of the same id is a no-op.
type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;column:id;type:text"`
	TenantID  int64     `json:"tenant_id" gorm:"column:tenant_id;not null;uniqueIndex:idx_message_tenant_mid"`
	ChatID    string    `json:"chat_id" gorm:"column:chat_id;not null;index"`
	MessageID string    `json:"message_id" gorm:"column:message_id;not null;uniqueIndex:idx_message_tenant_mid"`
	FromMe    bool      `json:"from_me" gorm:"column:from_me;default:false"`
	Body      string    `json:"body" gorm:"column:body;type:text"`
	Type      string    `json:"type" gorm:"column:type;not null"`
	IsRead    bool      `json:"is_read" gorm:"column:is_read;default:false"`
	SentAt    time.Time `json:"sent_at" gorm:"column:sent_at"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// IChatStorageRepository is the tenant-partitioned record store behind the
// materializer. Find-or-create operations rely on the unique indexes above
// to absorb concurrent webhook deliveries.
type IChatStorageRepository interface {
	GetContactByPhone(ctx context.Context, tenantID int64, normalizedPhone string) (*Contact, error)
	CreateContact(ctx context.Context, contact *Contact) error
	UpdateContactNames(ctx context.Context, contactID, firstname, lastname string) error

	GetOrCreateSource(ctx context.Context, tenantID int64, name string) (*Source, error)
	GetDefaultStatus(ctx context.Context, tenantID int64) (*ContactStatus, error)

	GetOrCreateChat(ctx context.Context, tenantID int64, receiverID, chatType, typeID string) (*Chat, error)
	TouchChatLastMessage(ctx context.Context, chatID, lastMessage string, lastMsgTime time.Time) error

	MessageExists(ctx context.Context, tenantID int64, messageID string) (bool, error)
	CreateMessage(ctx context.Context, message *ChatMessage) (created bool, err error)
}
