package middleware

import (
	"errors"

	"attendance_ms/dtos/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const LocalBody = "body"

var Validate = validator.New()

func translateValidationErrors(err validator.ValidationErrors) map[string]string {
	errorsMap := make(map[string]string)
	for _, e := range err {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errorsMap[field] = field + " is required"
		case "latitude":
			errorsMap[field] = field + " must be between -90 and 90"
		case "longitude":
			errorsMap[field] = field + " must be between -180 and 180"
		case "gte":
			errorsMap[field] = field + " must be at least " + e.Param()
		case "max":
			errorsMap[field] = field + " must be at most " + e.Param() + " characters"
		case "oneof":
			errorsMap[field] = field + " must be one of: " + e.Param()
		default:
			errorsMap[field] = field + " is invalid"
		}
	}
	return errorsMap
}

// ValidateBody is Fiber middleware that validates request body
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body T

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Error: "invalid request body",
				Code:  response.CodeInvalidRequest,
			})
		}

		if err := Validate.Struct(&body); err != nil {
			var errs validator.ValidationErrors
			if errors.As(err, &errs) {
				return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
					Error:  "invalid request body",
					Code:   response.CodeInvalidRequest,
					Fields: translateValidationErrors(errs),
				})
			}
			return c.Status(fiber.StatusBadRequest).JSON(response.ErrorResponse{
				Error: err.Error(),
				Code:  response.CodeInvalidRequest,
			})
		}

		c.Locals(LocalBody, &body)
		return c.Next()
	}
}

// Body returns the value stored by ValidateBody.
func Body[T any](c *fiber.Ctx) *T {
	body, _ := c.Locals(LocalBody).(*T)
	return body
}
