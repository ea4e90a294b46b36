package rest

import (
	"github.com/gofiber/fiber/v2"
	coreconfig "github.com/l0lsec/PodInsights/core/config"
	domainApp "github.com/l0lsec/PodInsights/domains/app"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type App struct {
	Service domainApp.IAppUsecase
}

func InitRestApp(app fiber.Router, service domainApp.IAppUsecase) App {
	rest := App{Service: service}
	app.Get("/app/status", rest.Status)
	app.Get("/app/version", rest.GetVersion)
	app.Get("/worker/stats", rest.WorkerStats)
	app.Get("/scheduler/stats", rest.SchedulerStats)
	return rest
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version":     coreconfig.Global.App.Version,
		"environment": coreconfig.Global.App.Environment,
	})
}

func (handler *App) Status(c *fiber.Ctx) error {
	status, err := handler.Service.Status(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Status retrieved",
		Results: status,
	})
}

// WorkerStats returns real-time processing pool statistics
func (handler *App) WorkerStats(c *fiber.Ctx) error {
	stats, err := handler.Service.WorkerStats(c.UserContext())
	utils.PanicIfNeeded(err)
	return c.JSON(stats)
}

// SchedulerStats returns the scheduler worker's lifetime counters
func (handler *App) SchedulerStats(c *fiber.Ctx) error {
	stats, err := handler.Service.SchedulerStats(c.UserContext())
	utils.PanicIfNeeded(err)
	return c.JSON(stats)
}
