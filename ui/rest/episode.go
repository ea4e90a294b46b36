package rest

import (
	"github.com/gofiber/fiber/v2"
	domainEpisode "github.com/l0lsec/PodInsights/domains/episode"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Episode struct {
	Service domainEpisode.IEpisodeUsecase
}

func InitRestEpisode(app fiber.Router, service domainEpisode.IEpisodeUsecase) Episode {
	rest := Episode{Service: service}
	app.Get("/episodes", rest.List)
	app.Get("/episodes/:id", rest.Get)
	app.Post("/episodes/:id/process", rest.Process)
	app.Delete("/episodes/:id", rest.Delete)
	return rest
}

func (controller *Episode) List(c *fiber.Ctx) error {
	episodes, err := controller.Service.List(c.UserContext(), c.Query("feed_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch episodes",
		Results: episodes,
	})
}

func (controller *Episode) Get(c *fiber.Ctx) error {
	episode, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch episode",
		Results: episode,
	})
}

func (controller *Episode) Process(c *fiber.Ctx) error {
	episode, err := controller.Service.Process(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Episode queued for processing",
		Results: episode,
	})
}

func (controller *Episode) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete episode",
	})
}
