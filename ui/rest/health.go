package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/l0lsec/PodInsights/domains/health"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Health struct {
	Service health.IHealthUsecase
}

func InitRestHealth(app fiber.Router, service health.IHealthUsecase) Health {
	handler := Health{Service: service}

	group := app.Group("/health")
	group.Get("/status", handler.GetStatus)
	group.Post("/check-all", handler.CheckAll)
	group.Post("/credentials/:platform/check", handler.CheckCredential)
	group.Post("/provider/check", handler.CheckProvider)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	records, err := h.Service.GetStatus(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: records,
	})
}

func (h *Health) CheckAll(c *fiber.Ctx) error {
	records, err := h.Service.CheckAll(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Verification completed for all entities",
		Results: records,
	})
}

func (h *Health) CheckCredential(c *fiber.Ctx) error {
	platform := c.Params("platform")
	record, err := h.Service.CheckCredential(c.UserContext(), platform)
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Credential health check completed",
		Results: record,
	})
}

func (h *Health) CheckProvider(c *fiber.Ctx) error {
	record, err := h.Service.CheckProvider(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(utils.ResponseData{
			Status:  500,
			Code:    "INTERNAL_SERVER_ERROR",
			Message: err.Error(),
		})
	}
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Provider health check completed",
		Results: record,
	})
}
