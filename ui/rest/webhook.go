package rest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kodecrm/wacoex/core/config"
	"github.com/kodecrm/wacoex/domains/webhook"
	"github.com/kodecrm/wacoex/pkg/utils"
	"github.com/sirupsen/logrus"
)

const signatureHeader = "X-Hub-Signature-256"

type Webhook struct {
	Service webhook.IWebhookUsecase
}

func InitRestWebhook(app fiber.Router, service webhook.IWebhookUsecase) Webhook {
	rest := Webhook{Service: service}
	app.Get("/webhook/whatsapp", rest.Verify)
	app.Post("/webhook/whatsapp", rest.Receive)

	return rest
}

// Verify answers the provider's subscription handshake: echo the challenge
// when the verify token matches.
func (handler *Webhook) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == config.Global.Webhook.VerifyToken {
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	logrus.Warnf("[WEBHOOK] verification rejected (mode=%s)", mode)
	return c.Status(fiber.StatusForbidden).JSON(utils.ResponseData{
		Status:  403,
		Code:    "VERIFICATION_FAILED",
		Message: "Webhook verification failed",
	})
}

// Receive validates the payload signature and routes every change to the
// dispatcher. Per-event failures are reported in the body but the delivery
// is still acknowledged with 200 so the provider does not build a redelivery
// backlog.
func (handler *Webhook) Receive(c *fiber.Ctx) error {
	body := c.Body()

	if !verifySignature(body, c.Get(signatureHeader), config.Global.Webhook.SignatureSecret) {
		logrus.Warn("[WEBHOOK] rejected delivery with invalid signature")
		return c.Status(fiber.StatusForbidden).JSON(utils.ResponseData{
			Status:  403,
			Code:    "INVALID_SIGNATURE",
			Message: "Webhook signature verification failed",
		})
	}

	var envelope webhook.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		logrus.WithError(err).Warn("[WEBHOOK] failed to decode payload")
		return c.Status(fiber.StatusBadRequest).JSON(utils.ResponseData{
			Status:  400,
			Code:    "INVALID_PAYLOAD",
			Message: "Webhook payload is not valid JSON",
		})
	}

	results := make([]webhook.Result, 0, 4)
	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			result := handler.Service.Dispatch(c.UserContext(), change.Field, change.Value, entry.ID)
			if result.Status == webhook.StatusError {
				logrus.Warnf("[WEBHOOK] %s event failed: %s", change.Field, result.Message)
			}
			results = append(results, result)
		}
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Webhook processed",
		Results: results,
	})
}

// verifySignature checks the provider's HMAC-SHA256 payload signature. An
// empty configured secret disables the check (local development).
func verifySignature(body []byte, header, secret string) bool {
	if secret == "" {
		return true
	}
	signature := strings.TrimPrefix(header, "sha256=")
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
