package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/apperr"
)

var kindStatus = map[apperr.Kind]int{
	apperr.KindUnauthorized:       fiber.StatusUnauthorized,
	apperr.KindNotFound:           fiber.StatusNotFound,
	apperr.KindTokenInvalid:       fiber.StatusNotFound,
	apperr.KindTokenExpired:       fiber.StatusGone,
	apperr.KindContractCancelled:  fiber.StatusGone,
	apperr.KindValidationFailed:   fiber.StatusBadRequest,
	apperr.KindPreconditionFailed: fiber.StatusConflict,
	apperr.KindConflict:           fiber.StatusConflict,
	apperr.KindDependencyFailed:   fiber.StatusBadGateway,
	apperr.KindInternal:           fiber.StatusInternalServerError,
}

// respondError maps an error's kind to an HTTP status and a caller-facing
// body. Unknown errors are reported as internal without leaking detail.
func (s *APIServer) respondError(c *fiber.Ctx, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		s.log.WithError(err).Error("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Something went wrong",
		})
	}

	status, ok := kindStatus[appErr.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	if appErr.Kind == apperr.KindInternal || appErr.Kind == apperr.KindDependencyFailed {
		s.log.WithError(err).Error("request failed")
	}

	body := fiber.Map{
		"success": false,
		"message": appErr.Message,
		"kind":    appErr.Kind,
	}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	return c.Status(status).JSON(body)
}
