package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kodecrm/wacoex/domains/chat"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatStorageRepository struct {
	db *gorm.DB
}

var _ chat.IChatStorageRepository = (*ChatStorageRepository)(nil)

func NewChatStorageRepository(db *gorm.DB) *ChatStorageRepository {
	return &ChatStorageRepository{db: db}
}

func (r *ChatStorageRepository) GetContactByPhone(ctx context.Context, tenantID int64, normalizedPhone string) (*chat.Contact, error) {
	var row chat.Contact
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND phone = ?", tenantID, normalizedPhone).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ChatStorageRepository) CreateContact(ctx context.Context, contact *chat.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	// DoNothing lets the unique (tenant_id, phone) index absorb a concurrent
	// create of the same contact.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "phone"}},
			DoNothing: true,
		}).
		Create(contact).Error
	if err != nil {
		return err
	}
	existing, err := r.GetContactByPhone(ctx, contact.TenantID, contact.Phone)
	if err != nil {
		return err
	}
	if existing != nil {
		*contact = *existing
	}
	return nil
}

func (r *ChatStorageRepository) UpdateContactNames(ctx context.Context, contactID, firstname, lastname string) error {
	updates := map[string]any{}
	if strings.TrimSpace(firstname) != "" {
		updates["firstname"] = firstname
	}
	if strings.TrimSpace(lastname) != "" {
		updates["lastname"] = lastname
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&chat.Contact{}).
		Where("id = ?", contactID).
		Updates(updates).Error
}

func (r *ChatStorageRepository) GetOrCreateSource(ctx context.Context, tenantID int64, name string) (*chat.Source, error) {
	var row chat.Source
	err := r.db.WithContext(ctx).
		Where(chat.Source{TenantID: tenantID, Name: name}).
		Attrs(chat.Source{ID: uuid.NewString()}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetDefaultStatus returns the tenant's first default status, manufacturing a
// "New" default when the tenant has none.
func (r *ChatStorageRepository) GetDefaultStatus(ctx context.Context, tenantID int64) (*chat.ContactStatus, error) {
	var row chat.ContactStatus
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		Order("created_at ASC").
		First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row = chat.ContactStatus{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      "New",
		IsDefault: true,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ChatStorageRepository) GetOrCreateChat(ctx context.Context, tenantID int64, receiverID, chatType, typeID string) (*chat.Chat, error) {
	var row chat.Chat
	err := r.db.WithContext(ctx).
		Where(chat.Chat{TenantID: tenantID, ReceiverID: receiverID, Type: chatType, TypeID: typeID}).
		Attrs(chat.Chat{ID: uuid.NewString()}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ChatStorageRepository) TouchChatLastMessage(ctx context.Context, chatID, lastMessage string, lastMsgTime time.Time) error {
	return r.db.WithContext(ctx).
		Model(&chat.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]any{
			"last_message":  lastMessage,
			"last_msg_time": lastMsgTime,
		}).Error
}

func (r *ChatStorageRepository) MessageExists(ctx context.Context, tenantID int64, messageID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&chat.ChatMessage{}).
		Where("tenant_id = ? AND message_id = ?", tenantID, messageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateMessage inserts the message unless its provider message_id was seen
// before for this tenant. Reports whether a row was actually created.
func (r *ChatStorageRepository) CreateMessage(ctx context.Context, message *chat.ChatMessage) (bool, error) {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "message_id"}},
			DoNothing: true,
		}).
		Create(message)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
