package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	pkgError "github.com/l0lsec/PodInsights/pkg/error"
	"github.com/l0lsec/PodInsights/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Recovery turns panics from the handlers into JSON error responses. Typed
// errors from pkg/error keep their status code, anything else is a 500.
func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			err := recover()
			if err != nil {
				var res utils.ResponseData
				res.Status = 500
				res.Code = "INTERNAL_SERVER_ERROR"
				res.Message = fmt.Sprintf("%v", err)

				logrus.Errorf("Panic recovered in middleware: %v", err)

				typed, isTyped := err.(pkgError.GenericError)
				if isTyped {
					res.Status = typed.StatusCode()
					res.Code = typed.ErrCode()
					res.Message = typed.Error()
				}

				_ = ctx.Status(res.Status).JSON(res)
			}
		}()

		return ctx.Next()
	}
}
