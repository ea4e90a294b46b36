package rest

import (
	"github.com/gofiber/fiber/v2"
	domainImage "github.com/l0lsec/PodInsights/domains/image"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Image struct {
	Service domainImage.IImageUsecase
}

func InitRestImage(app fiber.Router, service domainImage.IImageUsecase) Image {
	rest := Image{Service: service}
	app.Post("/images", rest.Upload)
	app.Get("/images", rest.List)
	app.Get("/images/search", rest.SearchStock)
	app.Get("/images/stats", rest.Stats)
	app.Get("/images/:id", rest.Get)
	app.Delete("/images/:id", rest.Delete)
	return rest
}

func (controller *Image) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "image file is required",
		})
	}

	image, err := controller.Service.Upload(c.UserContext(), domainImage.UploadRequest{Image: file})
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success upload image",
		Results: image,
	})
}

func (controller *Image) List(c *fiber.Ctx) error {
	images, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch images",
		Results: images,
	})
}

func (controller *Image) SearchStock(c *fiber.Ctx) error {
	images, err := controller.Service.SearchStock(c.UserContext(), c.Query("q"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success search stock images",
		Results: images,
	})
}

func (controller *Image) Stats(c *fiber.Ctx) error {
	stats, err := controller.Service.Stats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch image stats",
		Results: stats,
	})
}

func (controller *Image) Get(c *fiber.Ctx) error {
	image, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch image",
		Results: image,
	})
}

func (controller *Image) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete image",
	})
}
