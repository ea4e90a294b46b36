package rest

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	domainScheduler "github.com/l0lsec/PodInsights/domains/scheduler"
	"github.com/l0lsec/PodInsights/pkg/timeutils"
	"github.com/l0lsec/PodInsights/pkg/utils"
	"github.com/l0lsec/PodInsights/scheduler/domain/common"
	"github.com/l0lsec/PodInsights/scheduler/domain/queue"
	"github.com/l0lsec/PodInsights/scheduler/domain/slots"
)

type Scheduler struct {
	Service domainScheduler.ISchedulerUsecase
}

func InitRestScheduler(app fiber.Router, service domainScheduler.ISchedulerUsecase) Scheduler {
	rest := Scheduler{Service: service}

	app.Post("/schedule", rest.Schedule)
	app.Get("/schedule", rest.ListScheduled)
	app.Get("/schedule/preview", rest.PreviewNextSlot)
	app.Post("/schedule/bulk-delete", rest.BulkDelete)
	app.Post("/schedule/clear-pending", rest.ClearPending)
	app.Post("/schedule/redistribute", rest.Redistribute)
	app.Post("/schedule/reorder", rest.Reorder)
	app.Post("/schedule/move", rest.Move)
	app.Post("/schedule/cancel-by-source", rest.CancelBySource)

	app.Get("/schedule/slots", rest.ListSlots)
	app.Post("/schedule/slots", rest.AddSlot)
	app.Put("/schedule/slots/:id", rest.UpdateSlot)
	app.Delete("/schedule/slots/:id", rest.DeleteSlot)

	app.Get("/schedule/limits", rest.ListLimits)
	app.Get("/schedule/limits/:platform", rest.GetLimit)
	app.Put("/schedule/limits/:platform", rest.SetLimit)

	app.Get("/schedule/platform", rest.GetDefaultPlatform)
	app.Put("/schedule/platform", rest.SetDefaultPlatform)

	// Param routes go last so the static paths above keep winning.
	app.Get("/schedule/:id", rest.GetScheduled)
	app.Put("/schedule/:id/time", rest.UpdateTime)
	app.Post("/schedule/:id/cancel", rest.Cancel)
	app.Post("/schedule/:id/retry", rest.Retry)
	app.Post("/schedule/:id/post-now", rest.PostNow)
	app.Delete("/schedule/:id", rest.Delete)

	return rest
}

func (controller *Scheduler) Schedule(c *fiber.Ctx) error {
	var request domainScheduler.EnqueueRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	post, err := controller.Service.Enqueue(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success schedule post",
		Results: post,
	})
}

func (controller *Scheduler) ListScheduled(c *fiber.Ctx) error {
	status := queue.Status(c.Query("status"))
	platform := c.Query("platform")

	posts, err := controller.Service.List(c.UserContext(), status, platform)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch scheduled posts",
		Results: posts,
	})
}

func (controller *Scheduler) GetScheduled(c *fiber.Ctx) error {
	post, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch scheduled post",
		Results: post,
	})
}

func (controller *Scheduler) PreviewNextSlot(c *fiber.Ctx) error {
	at, err := controller.Service.PreviewNextSlot(c.UserContext(), c.Query("platform"))
	if err != nil {
		if errors.Is(err, common.ErrNoSlotsConfigured) || errors.Is(err, common.ErrNoAvailableSlot) {
			return c.JSON(utils.ResponseData{
				Status:  200,
				Code:    "SUCCESS",
				Message: err.Error(),
			})
		}
		utils.PanicIfNeeded(err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success preview next slot",
		Results: fiber.Map{"next_slot": at},
	})
}

func (controller *Scheduler) UpdateTime(c *fiber.Ctx) error {
	var request domainScheduler.UpdateTimeRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	if request.ScheduledFor == "" {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "scheduled_for is required",
		})
	}

	at, err := timeutils.ParseLocalTimestamp(request.ScheduledFor, time.Now().Location())
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "could not parse scheduled_for: " + err.Error(),
		})
	}

	ok, err := controller.Service.UpdateTime(c.UserContext(), c.Params("id"), at)
	utils.PanicIfNeeded(err)
	if !ok {
		return c.Status(409).JSON(utils.ResponseData{
			Status:  409,
			Code:    "CONFLICT",
			Message: "only pending posts can be rescheduled",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update post time",
	})
}

func (controller *Scheduler) Cancel(c *fiber.Ctx) error {
	ok, err := controller.Service.Cancel(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)
	if !ok {
		return c.Status(409).JSON(utils.ResponseData{
			Status:  409,
			Code:    "CONFLICT",
			Message: "only pending posts can be cancelled",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel scheduled post",
	})
}

func (controller *Scheduler) CancelBySource(c *fiber.Ctx) error {
	var request domainScheduler.CancelBySourceRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	cancelled, err := controller.Service.CancelBySource(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success cancel posts by source",
		Results: fiber.Map{"cancelled": cancelled},
	})
}

func (controller *Scheduler) Retry(c *fiber.Ctx) error {
	post, err := controller.Service.Retry(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success queue post for retry",
		Results: post,
	})
}

func (controller *Scheduler) PostNow(c *fiber.Ctx) error {
	post, err := controller.Service.PostNow(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success publish post",
		Results: post,
	})
}

func (controller *Scheduler) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete scheduled post",
	})
}

func (controller *Scheduler) BulkDelete(c *fiber.Ctx) error {
	var request domainScheduler.BulkDeleteRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	deleted, err := controller.Service.DeleteBulk(c.UserContext(), request.PostIDs)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete scheduled posts",
		Results: fiber.Map{"deleted": deleted},
	})
}

func (controller *Scheduler) ClearPending(c *fiber.Ctx) error {
	cleared, err := controller.Service.ClearPending(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success clear pending queue",
		Results: fiber.Map{"deleted": cleared},
	})
}

func (controller *Scheduler) Redistribute(c *fiber.Ctx) error {
	moved, err := controller.Service.Redistribute(c.UserContext(), c.Query("platform"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success redistribute queue",
		Results: fiber.Map{"moved": moved},
	})
}

func (controller *Scheduler) Reorder(c *fiber.Ctx) error {
	var request domainScheduler.ReorderRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	ok, err := controller.Service.Reorder(c.UserContext(), request.PostIDs)
	utils.PanicIfNeeded(err)
	if !ok {
		return c.Status(409).JSON(utils.ResponseData{
			Status:  409,
			Code:    "CONFLICT",
			Message: "queue changed while reordering, reload and retry",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success reorder queue",
	})
}

func (controller *Scheduler) Move(c *fiber.Ctx) error {
	var request domainScheduler.MoveRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	ok, err := controller.Service.MoveToPosition(c.UserContext(), request.PostIDs, queue.Position(request.Position))
	utils.PanicIfNeeded(err)
	if !ok {
		return c.Status(409).JSON(utils.ResponseData{
			Status:  409,
			Code:    "CONFLICT",
			Message: "queue changed while moving posts, reload and retry",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success move posts",
	})
}

func (controller *Scheduler) ListSlots(c *fiber.Ctx) error {
	configured, err := controller.Service.ListSlots(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch time slots",
		Results: configured,
	})
}

func (controller *Scheduler) AddSlot(c *fiber.Ctx) error {
	var request domainScheduler.SlotRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	slot, err := controller.Service.AddSlot(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success add time slot",
		Results: slot,
	})
}

func (controller *Scheduler) UpdateSlot(c *fiber.Ctx) error {
	var update slots.SlotUpdate
	err := c.BodyParser(&update)
	utils.PanicIfNeeded(err)

	err = controller.Service.UpdateSlot(c.UserContext(), c.Params("id"), update)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update time slot",
	})
}

func (controller *Scheduler) DeleteSlot(c *fiber.Ctx) error {
	err := controller.Service.DeleteSlot(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete time slot",
	})
}

func (controller *Scheduler) ListLimits(c *fiber.Ctx) error {
	limits, err := controller.Service.ListLimits(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch platform limits",
		Results: limits,
	})
}

func (controller *Scheduler) GetLimit(c *fiber.Ctx) error {
	limit, err := controller.Service.GetLimit(c.UserContext(), c.Params("platform"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch platform limit",
		Results: limit,
	})
}

func (controller *Scheduler) SetLimit(c *fiber.Ctx) error {
	var request domainScheduler.LimitRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	limit, err := controller.Service.SetLimit(c.UserContext(), c.Params("platform"), request.MaxPostsPerDay)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update platform limit",
		Results: limit,
	})
}

func (controller *Scheduler) GetDefaultPlatform(c *fiber.Ctx) error {
	platform, err := controller.Service.DefaultPlatform(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch default platform",
		Results: fiber.Map{"platform": platform},
	})
}

func (controller *Scheduler) SetDefaultPlatform(c *fiber.Ctx) error {
	var request domainScheduler.DefaultPlatformRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = controller.Service.SetDefaultPlatform(c.UserContext(), request.Platform)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update default platform",
	})
}
