package rest

import (
	"github.com/gofiber/fiber/v2"
	domainStandalone "github.com/l0lsec/PodInsights/domains/standalone"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Standalone struct {
	Service domainStandalone.IStandaloneUsecase
}

func InitRestStandalone(app fiber.Router, service domainStandalone.IStandaloneUsecase) Standalone {
	rest := Standalone{Service: service}
	app.Post("/standalone-posts", rest.Generate)
	app.Get("/standalone-posts", rest.List)
	app.Get("/standalone-posts/:id", rest.Get)
	app.Put("/standalone-posts/:id", rest.Update)
	app.Post("/standalone-posts/:id/mark-used", rest.MarkUsed)
	app.Delete("/standalone-posts/:id", rest.Delete)
	return rest
}

func (controller *Standalone) Generate(c *fiber.Ctx) error {
	var request domainStandalone.GeneratePostsRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	posts, err := controller.Service.Generate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success generate standalone posts",
		Results: posts,
	})
}

func (controller *Standalone) List(c *fiber.Ctx) error {
	unusedOnly := c.QueryBool("unused_only")
	posts, err := controller.Service.List(c.UserContext(), c.Query("platform"), unusedOnly)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch standalone posts",
		Results: posts,
	})
}

func (controller *Standalone) Get(c *fiber.Ctx) error {
	post, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch standalone post",
		Results: post,
	})
}

func (controller *Standalone) Update(c *fiber.Ctx) error {
	var request domainStandalone.UpdatePostRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	post, err := controller.Service.Update(c.UserContext(), c.Params("id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update standalone post",
		Results: post,
	})
}

func (controller *Standalone) MarkUsed(c *fiber.Ctx) error {
	err := controller.Service.MarkUsed(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success mark standalone post as used",
	})
}

func (controller *Standalone) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete standalone post",
	})
}
