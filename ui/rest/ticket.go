package rest

import (
	"github.com/gofiber/fiber/v2"
	domainTicket "github.com/l0lsec/PodInsights/domains/ticket"
	"github.com/l0lsec/PodInsights/pkg/utils"
)

type Ticket struct {
	Service domainTicket.ITicketUsecase
}

func InitRestTicket(app fiber.Router, service domainTicket.ITicketUsecase) Ticket {
	rest := Ticket{Service: service}
	app.Post("/tickets", rest.Create)
	app.Get("/tickets", rest.List)
	app.Get("/tickets/board", rest.Board)
	app.Get("/tickets/:id/transitions", rest.ListTransitions)
	app.Post("/tickets/:id/transition", rest.Transition)
	app.Delete("/tickets/:id", rest.Delete)
	return rest
}

func (controller *Ticket) Create(c *fiber.Ctx) error {
	var request domainTicket.CreateTicketRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	ticket, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success create ticket",
		Results: ticket,
	})
}

func (controller *Ticket) List(c *fiber.Ctx) error {
	tickets, err := controller.Service.List(c.UserContext(), c.Query("episode_id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch tickets",
		Results: tickets,
	})
}

func (controller *Ticket) Board(c *fiber.Ctx) error {
	board, err := controller.Service.Board(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch ticket board",
		Results: board,
	})
}

func (controller *Ticket) ListTransitions(c *fiber.Ctx) error {
	transitions, err := controller.Service.ListTransitions(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success fetch ticket transitions",
		Results: transitions,
	})
}

func (controller *Ticket) Transition(c *fiber.Ctx) error {
	var request domainTicket.TransitionRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	err = controller.Service.Transition(c.UserContext(), c.Params("id"), request.TransitionID)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success transition ticket",
	})
}

func (controller *Ticket) Delete(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Success delete ticket",
	})
}
