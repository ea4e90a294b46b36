package rest

import (
	"github.com/gofiber/fiber/v2"
	domainSocialPost "github.com/l0lsec/PodInsights/domains/socialpost"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type SocialPost struct {
	Service domainSocialPost.ISocialPostUsecase
}

func InitRestSocialPost(app fiber.Router, service domainSocialPost.ISocialPostUsecase) SocialPost {
	rest := SocialPost{Service: service}
	app.Post("/social-posts", rest.Generate)
	app.Get("/social-posts", rest.List)
	app.Get("/social-posts/:id", rest.Get)
	app.Put("/social-posts/:id", rest.Update)
	app.Post("/social-posts/:id/mark-used", rest.MarkUsed)
	app.Delete("/social-posts/:id", rest.Delete)
	return rest
}

func (controller *SocialPost) Generate(c *fiber.Ctx) error {
	var request domainSocialPost.GeneratePostsRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	posts, err := controller.Service.Generate(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success generate posts",
		Results: posts,
	})
}

func (controller *SocialPost) List(c *fiber.Ctx) error {
	unusedOnly := c.QueryBool("unused_only")
	posts, err := controller.Service.List(c.UserContext(), c.Query("article_id"), unusedOnly)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch posts",
		Results: posts,
	})
}

func (controller *SocialPost) Get(c *fiber.Ctx) error {
	post, err := controller.Service.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch post",
		Results: post,
	})
}

func (controller *SocialPost) Update(c *fiber.Ctx) error {
	var request domainSocialPost.UpdatePostRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	post, err := controller.Service.Update(c.UserContext(), c.Params("id"), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success update post",
		Results: post,
	})
}

func (controller *SocialPost) MarkUsed(c *fiber.Ctx) error {
	err := controller.Service.MarkUsed(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success mark post as used",
	})
}

func (controller *SocialPost) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete post",
	})
}
