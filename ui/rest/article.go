package rest

import (
	"github.com/gofiber/fiber/v2"
	domainArticle "github.com/l0lsec/PodInsights/domains/article"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Article struct {
	Service domainArticle.IArticleUsecase
}

func InitRestArticle(app fiber.Router, service domainArticle.IArticleUsecase) Article {
	rest := Article{Service: service}
	app.Post("/articles", rest.Generate)
	app.Get("/articles", rest.List)
	app.Get("/articles/:id", rest.Get)
	app.Put("/articles/:id", rest.Update)
	app.Delete("/articles/:id", rest.Delete)
	return rest
}

func (controller *Article) Generate(c *fiber.Ctx) error {
	var request domainArticle.GenerateArticleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	article, err := controller.Service.Generate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success generate article",
		Results: article,
	})
}

func (controller *Article) List(c *fiber.Ctx) error {
	articles, err := controller.Service.List(c.UserContext(), c.Query("episode_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch articles",
		Results: articles,
	})
}

func (controller *Article) Get(c *fiber.Ctx) error {
	article, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch article",
		Results: article,
	})
}

func (controller *Article) Update(c *fiber.Ctx) error {
	var request domainArticle.UpdateArticleRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	article, err := controller.Service.Update(c.UserContext(), c.Params("id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update article",
		Results: article,
	})
}

func (controller *Article) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete article",
	})
}
