package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/kodecrm/wacoex/domains/chat"
	"github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	"github.com/kodecrm/wacoex/domains/webhook"
	"github.com/kodecrm/wacoex/pkg/phone"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

type serviceMaterializer struct {
	chatRepo chat.IChatStorageRepository
	syncRepo sync.ISyncStatusRepository
	bus      EventBus.Bus
}

func NewMaterializerService(chatRepo chat.IChatStorageRepository, syncRepo sync.ISyncStatusRepository, bus EventBus.Bus) chat.IMaterializerUsecase {
	return &serviceMaterializer{
		chatRepo: chatRepo,
		syncRepo: syncRepo,
		bus:      bus,
	}
}

func (service *serviceMaterializer) SyncContacts(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string, contacts []webhook.SyncContact) chat.MaterializeCounts {
	var counts chat.MaterializeCounts

	for _, c := range contacts {
		normalized := phone.Normalize(firstNonEmpty(c.WaID, c.Phone))
		if normalized == "" {
			counts.Skipped++
			continue
		}

		firstname, lastname := contactNames(c.Profile)
		raw, _ := json.Marshal(c)
		if err := service.upsertContact(ctx, tc, normalized, firstname, lastname, datatypes.JSON(raw)); err != nil {
			logrus.WithError(err).Errorf("[MATERIALIZER] tenant %d: failed to sync contact %s", tc.TenantID, normalized)
			counts.Errored++
			continue
		}
		counts.Synced++
	}

	if err := service.syncRepo.MarkPhaseCompleted(ctx, tc.TenantID, phoneNumberID, sync.PhaseContacts, counts.Synced); err != nil {
		logrus.WithError(err).Errorf("[MATERIALIZER] tenant %d: failed to mark contacts sync completed", tc.TenantID)
	}

	service.bus.Publish(webhook.EventContactsSynced, tc, counts.Synced)
	logrus.Infof("[MATERIALIZER] tenant %d: contacts sync done (synced=%d skipped=%d errored=%d)",
		tc.TenantID, counts.Synced, counts.Skipped, counts.Errored)
	return counts
}

func (service *serviceMaterializer) SyncMessageHistory(ctx context.Context, tc tenant.Context, phoneNumberID, wabaID string, messages []webhook.HistoryMessage) chat.MaterializeCounts {
	var counts chat.MaterializeCounts

	for _, m := range messages {
		if strings.TrimSpace(m.ID) == "" {
			counts.Errored++
			continue
		}

		exists, err := service.chatRepo.MessageExists(ctx, tc.TenantID, m.ID)
		if err != nil {
			logrus.WithError(err).Errorf("[MATERIALIZER] tenant %d: dedup check failed for %s", tc.TenantID, m.ID)
			counts.Errored++
			continue
		}
		if exists {
			counts.Skipped++
			continue
		}

		customer := m.From
		if m.FromMe {
			customer = m.To
		}
		normalized := phone.Normalize(customer)
		if normalized == "" {
			counts.Errored++
			continue
		}

		created, err := service.materializeMessage(ctx, tc, normalized, chat.ChatMessage{
			TenantID:  tc.TenantID,
			MessageID: m.ID,
			FromMe:    m.FromMe,
			Body:      extractMessageText(m.Text, m.Body, m.Type),
			Type:      chat.MessageTypeHistory,
			IsRead:    true,
			SentAt:    messageSentAt(m.Timestamp),
		}, false)
		if err != nil {
			logrus.WithError(err).Errorf("[MATERIALIZER] tenant %d: failed to materialize history message %s", tc.TenantID, m.ID)
			counts.Errored++
			continue
		}
		if !created {
			counts.Skipped++
			continue
		}
		counts.Synced++
	}

	if counts.Synced > 0 {
		if err := service.syncRepo.AddSyncedCounts(ctx, tc.TenantID, phoneNumberID, 0, counts.Synced); err != nil {
			logrus.WithError(err).Errorf("[MATERIALIZER] tenant %d: failed to bump message counters", tc.TenantID)
		}
	}

	service.bus.Publish(webhook.EventHistorySynced, tc, counts.Synced)
	return counts
}

func (service *serviceMaterializer) ProcessMessageEcho(ctx context.Context, tc tenant.Context, phoneNumberID string, echo webhook.EchoMessage) error {
	if strings.TrimSpace(echo.ID) == "" {
		return nil
	}

	// Echoes are copies of messages the business sent from the WhatsApp
	// Business App; the customer is always the `to` side.
	normalized := phone.Normalize(echo.To)
	if normalized == "" {
		return nil
	}

	_, err := service.materializeMessage(ctx, tc, normalized, chat.ChatMessage{
		TenantID:  tc.TenantID,
		MessageID: echo.ID,
		FromMe:    true,
		Body:      extractMessageText(echo.Text, echo.Body, echo.Type),
		Type:      chat.MessageTypeEcho,
		IsRead:    true,
		SentAt:    messageSentAt(echo.Timestamp),
	}, true)
	return err
}

// messageSentAt falls back to the receive time when the provider omits a
// timestamp, so no message lands at the Unix epoch.
func messageSentAt(timestamp int64) time.Time {
	if timestamp > 0 {
		return time.Unix(timestamp, 0).UTC()
	}
	return time.Now().UTC()
}

// materializeMessage resolves the Contact and Chat for the customer phone,
// inserts the message if its provider id is new and keeps the chat's
// denormalized last-message fields consistent.
func (service *serviceMaterializer) materializeMessage(ctx context.Context, tc tenant.Context, customerPhone string, message chat.ChatMessage, alwaysTouchChat bool) (bool, error) {
	contact, err := service.resolveContact(ctx, tc, customerPhone, "", "", nil)
	if err != nil {
		return false, err
	}

	chatRow, err := service.chatRepo.GetOrCreateChat(ctx, tc.TenantID, customerPhone, contact.Type, contact.ID)
	if err != nil {
		return false, err
	}

	message.ChatID = chatRow.ID
	created, err := service.chatRepo.CreateMessage(ctx, &message)
	if err != nil {
		return false, err
	}

	newest := chatRow.LastMsgTime == nil || !message.SentAt.Before(*chatRow.LastMsgTime)
	if (created && newest) || alwaysTouchChat {
		if err := service.chatRepo.TouchChatLastMessage(ctx, chatRow.ID, message.Body, message.SentAt); err != nil {
			logrus.WithError(err).Errorf("[MATERIALIZER] tenant %d: failed to touch chat %s", tc.TenantID, chatRow.ID)
		}
	}
	return created, nil
}

func (service *serviceMaterializer) upsertContact(ctx context.Context, tc tenant.Context, normalizedPhone, firstname, lastname string, raw datatypes.JSON) error {
	existing, err := service.chatRepo.GetContactByPhone(ctx, tc.TenantID, normalizedPhone)
	if err != nil {
		return err
	}
	if existing == nil {
		_, err = service.resolveContact(ctx, tc, normalizedPhone, firstname, lastname, raw)
		return err
	}

	// Only blank name fields are backfilled, non-empty ones are preserved.
	newFirst, newLast := "", ""
	if existing.Firstname == "" {
		newFirst = firstname
	}
	if existing.Lastname == "" {
		newLast = lastname
	}
	if newFirst == "" && newLast == "" {
		return nil
	}
	return service.chatRepo.UpdateContactNames(ctx, existing.ID, newFirst, newLast)
}

// resolveContact finds the contact by phone or creates it with the
// coexistence source, the tenant's default status and the raw provider
// payload kept as metadata.
func (service *serviceMaterializer) resolveContact(ctx context.Context, tc tenant.Context, normalizedPhone, firstname, lastname string, raw datatypes.JSON) (*chat.Contact, error) {
	existing, err := service.chatRepo.GetContactByPhone(ctx, tc.TenantID, normalizedPhone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	source, err := service.chatRepo.GetOrCreateSource(ctx, tc.TenantID, chat.CoexistenceSourceName)
	if err != nil {
		return nil, err
	}
	status, err := service.chatRepo.GetDefaultStatus(ctx, tc.TenantID)
	if err != nil {
		return nil, err
	}

	contact := &chat.Contact{
		TenantID:    tc.TenantID,
		Phone:       normalizedPhone,
		Firstname:   firstname,
		Lastname:    lastname,
		Type:        chat.ContactTypeLead,
		SourceID:    source.ID,
		StatusID:    status.ID,
		Description: "Imported via WhatsApp Business App coexistence sync",
		Metadata:    raw,
	}
	if err := service.chatRepo.CreateContact(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func contactNames(profile *webhook.Profile) (string, string) {
	if profile == nil {
		return "", ""
	}
	first := strings.TrimSpace(profile.FirstName)
	last := strings.TrimSpace(profile.LastName)
	if first != "" || last != "" {
		return first, last
	}

	full := strings.TrimSpace(profile.Name)
	if full == "" {
		return "", ""
	}
	parts := strings.SplitN(full, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}

// extractMessageText prefers the structured text body, then the flat body,
// then a type-based placeholder.
func extractMessageText(text *webhook.TextContent, body, messageType string) string {
	if text != nil && strings.TrimSpace(text.Body) != "" {
		return text.Body
	}
	if strings.TrimSpace(body) != "" {
		return body
	}
	if t := strings.TrimSpace(messageType); t != "" {
		return capitalize(t) + " message"
	}
	return "Message content"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
