package rest

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/kodecrm/wacoex/domains/signup"
	"github.com/kodecrm/wacoex/domains/tenant"
	pkgError "github.com/kodecrm/wacoex/pkg/error"
	"github.com/kodecrm/wacoex/pkg/utils"
	"github.com/kodecrm/wacoex/validations"
)

type Signup struct {
	Service    signup.ISignupUsecase
	TenantRepo tenant.ITenantRepository
}

func InitRestSignup(app fiber.Router, service signup.ISignupUsecase, tenantRepo tenant.ITenantRepository) Signup {
	rest := Signup{Service: service, TenantRepo: tenantRepo}
	app.Post("/whatsapp/signup", rest.ProcessSignup)
	app.Get("/whatsapp/signup/availability", rest.Availability)

	return rest
}

type signupBody struct {
	signup.Request
	TenantID int64 `json:"tenant_id"`
}

func (handler *Signup) ProcessSignup(c *fiber.Ctx) error {
	var body signupBody
	if err := c.BodyParser(&body); err != nil {
		panic(pkgError.ValidationError("request body: invalid JSON."))
	}

	err := validations.ValidateSignup(c.UserContext(), body.Request)
	utils.PanicIfNeeded(err)

	tc := resolveTenantContext(c, handler.TenantRepo, body.TenantID)
	result := handler.Service.ProcessSignup(c.UserContext(), tc, body.Request)

	status := http.StatusOK
	code := "SUCCESS"
	if !result.Success {
		status = statusForSignupError(result.ErrorCode)
		code = result.ErrorCode
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: result.Message,
		Results: result,
	})
}

func (handler *Signup) Availability(c *fiber.Ctx) error {
	tc := resolveTenantContext(c, handler.TenantRepo, int64(c.QueryInt("tenant_id", 0)))
	available, err := handler.Service.IsAvailable(c.UserContext(), tc)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Signup availability",
		Results: map[string]any{
			"available": available,
		},
	})
}

func statusForSignupError(errorCode string) int {
	switch errorCode {
	case signup.ErrCodeMissingTenantContext,
		signup.ErrCodeMissingCredentials,
		signup.ErrCodeMissingSessionData,
		signup.ErrCodeMissingAuthCode:
		return http.StatusBadRequest
	case signup.ErrCodeTokenExchangeFailed,
		signup.ErrCodeCoexWabaNotFound,
		signup.ErrCodeWabaDetailsFailed,
		signup.ErrCodeNoPhoneNumber:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
