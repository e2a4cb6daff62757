package rest

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/kodecrm/wacoex/domains/sync"
	"github.com/kodecrm/wacoex/domains/tenant"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
	"github.com/kodecrm/wacoex/pkg/utils"
	"github.com/kodecrm/wacoex/validations"
)

type Sync struct {
	Service    sync.ISyncUsecase
	TenantRepo tenant.ITenantRepository
}

func InitRestSync(app fiber.Router, service sync.ISyncUsecase, tenantRepo tenant.ITenantRepository) Sync {
	rest := Sync{Service: service, TenantRepo: tenantRepo}
	app.Post("/whatsapp/sync/contacts", rest.SyncContacts)
	app.Post("/whatsapp/sync/messages", rest.SyncMessages)
	app.Get("/whatsapp/sync/status", rest.Status)

	return rest
}

type manualSyncBody struct {
	sync.ManualSyncRequest
	TenantID int64 `json:"tenant_id"`
}

func (handler *Sync) SyncContacts(c *fiber.Ctx) error {
	body, tc := handler.parseManualSync(c)
	result := handler.Service.ManualSyncContacts(c.UserContext(), tc, body.PhoneNumberID, body.WabaID)
	return respondTrigger(c, result)
}

func (handler *Sync) SyncMessages(c *fiber.Ctx) error {
	body, tc := handler.parseManualSync(c)
	result := handler.Service.ManualSyncMessages(c.UserContext(), tc, body.PhoneNumberID, body.WabaID)
	return respondTrigger(c, result)
}

func (handler *Sync) Status(c *fiber.Ctx) error {
	tc := resolveTenantContext(c, handler.TenantRepo, int64(c.QueryInt("tenant_id", 0)))
	if !tc.Valid() {
		panic(pkgError.ValidationError("tenant: cannot be resolved."))
	}

	status, err := handler.Service.Status(c.UserContext(), tc, c.Query("phone_number_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Sync status",
		Results: status,
	})
}

func (handler *Sync) parseManualSync(c *fiber.Ctx) (manualSyncBody, tenant.Context) {
	var body manualSyncBody
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			panic(pkgError.ValidationError("request body: invalid JSON."))
		}
	}

	err := validations.ValidateManualSync(c.UserContext(), body.ManualSyncRequest)
	utils.PanicIfNeeded(err)

	tc := resolveTenantContext(c, handler.TenantRepo, body.TenantID)
	if !tc.Valid() {
		panic(pkgError.ValidationError("tenant: cannot be resolved."))
	}
	return body, tc
}

func respondTrigger(c *fiber.Ctx, result sync.TriggerResult) error {
	status := http.StatusOK
	code := "SUCCESS"
	if !result.Success {
		status = http.StatusUnprocessableEntity
		code = "SYNC_TRIGGER_FAILED"
	}
	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: result.Message,
		Results: result,
	})
}
