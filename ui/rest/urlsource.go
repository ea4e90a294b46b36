package rest

import (
	"github.com/gofiber/fiber/v2"
	domainURL "github.com/l0lsec/PodInsights/domains/urlsource"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type URLSource struct {
	Service domainURL.IURLSourceUsecase
}

func InitRestURLSource(app fiber.Router, service domainURL.IURLSourceUsecase) URLSource {
	rest := URLSource{Service: service}
	app.Post("/url-sources", rest.Scrape)
	app.Get("/url-sources", rest.List)
	app.Get("/url-sources/:id", rest.Get)
	app.Delete("/url-sources/:id", rest.Delete)
	return rest
}

func (controller *URLSource) Scrape(c *fiber.Ctx) error {
	var request domainURL.ScrapeRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	source, err := controller.Service.Scrape(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success scrape url",
		Results: source,
	})
}

func (controller *URLSource) List(c *fiber.Ctx) error {
	sources, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch url sources",
		Results: sources,
	})
}

func (controller *URLSource) Get(c *fiber.Ctx) error {
	source, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch url source",
		Results: source,
	})
}

func (controller *URLSource) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete url source",
	})
}
