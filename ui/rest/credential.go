package rest

import (
	"github.com/gofiber/fiber/v2"
	domainCredential "github.com/l0lsec/PodInsights/domains/credential"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Credential struct {
	Service domainCredential.ICredentialUsecase
}

func InitRestCredential(app fiber.Router, service domainCredential.ICredentialUsecase) Credential {
	rest := Credential{Service: service}
	app.Get("/credentials", rest.StatusAll)
	app.Get("/credentials/:platform/authorize", rest.Authorize)
	app.Get("/credentials/:platform/callback", rest.Callback)
	app.Post("/credentials/:platform/connect", rest.Connect)
	app.Get("/credentials/:platform", rest.Status)
	app.Delete("/credentials/:platform", rest.Disconnect)
	return rest
}

func (h *Credential) StatusAll(c *fiber.Ctx) error {
	statuses, err := h.Service.StatusAll(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch credential statuses",
		Results: statuses,
	})
}

func (h *Credential) Status(c *fiber.Ctx) error {
	status, err := h.Service.Status(c.UserContext(), domainCredential.Platform(c.Params("platform")))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch credential status",
		Results: status,
	})
}

func (h *Credential) Authorize(c *fiber.Ctx) error {
	url, err := h.Service.AuthorizationURL(c.UserContext(), domainCredential.Platform(c.Params("platform")))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Authorization URL generated",
		Results: fiber.Map{"url": url},
	})
}

// Callback is the OAuth redirect target. Providers report user denials via
// query params instead of a code, so those surface as a 400 here.
func (h *Credential) Callback(c *fiber.Ctx) error {
	if reason := c.Query("error_description", c.Query("error")); reason != "" {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "authorization failed: " + reason,
		})
	}

	request := domainCredential.ConnectRequest{Code: c.Query("code")}
	status, err := h.Service.Connect(c.UserContext(), domainCredential.Platform(c.Params("platform")), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Account connected",
		Results: status,
	})
}

func (h *Credential) Connect(c *fiber.Ctx) error {
	var request domainCredential.ConnectRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	status, err := h.Service.Connect(c.UserContext(), domainCredential.Platform(c.Params("platform")), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Account connected",
		Results: status,
	})
}

func (h *Credential) Disconnect(c *fiber.Ctx) error {
	err := h.Service.Disconnect(c.UserContext(), domainCredential.Platform(c.Params("platform")))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Account disconnected",
	})
}
