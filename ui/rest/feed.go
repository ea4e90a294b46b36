package rest

import (
	"github.com/gofiber/fiber/v2"
	domainFeed "github.com/l0lsec/PodInsights/domains/feed"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Feed struct {
	Service domainFeed.IFeedUsecase
}

func InitRestFeed(app fiber.Router, service domainFeed.IFeedUsecase) Feed {
	rest := Feed{Service: service}
	app.Post("/feeds", rest.Add)
	app.Get("/feeds", rest.List)
	app.Post("/feeds/bulk-delete", rest.BulkDelete)
	app.Get("/feeds/:id", rest.Get)
	app.Post("/feeds/:id/refresh", rest.Refresh)
	app.Delete("/feeds/:id", rest.Delete)
	return rest
}

func (controller *Feed) Add(c *fiber.Ctx) error {
	var request domainFeed.AddFeedRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	feed, err := controller.Service.Add(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success add feed",
		Results: feed,
	})
}

func (controller *Feed) List(c *fiber.Ctx) error {
	feeds, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch feeds",
		Results: feeds,
	})
}

func (controller *Feed) Get(c *fiber.Ctx) error {
	feed, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch feed",
		Results: feed,
	})
}

func (controller *Feed) Refresh(c *fiber.Ctx) error {
	feed, err := controller.Service.Refresh(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success refresh feed",
		Results: feed,
	})
}

func (controller *Feed) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete feed",
	})
}

func (controller *Feed) BulkDelete(c *fiber.Ctx) error {
	var request domainFeed.BulkDeleteRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	deleted, err := controller.Service.DeleteBulk(c.UserContext(), request.FeedIDs)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete feeds",
		Results: fiber.Map{"deleted": deleted},
	})
}
