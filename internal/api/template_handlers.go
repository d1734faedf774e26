package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/api/middleware"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
)

type TemplateRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description"`
	FieldValues models.JSON `json:"field_values"`
}

func (s *APIServer) handleCreateTemplate(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "template name is required"))
	}

	template := &models.ContractTemplate{
		CompanyID:   user.CompanyID,
		Name:        req.Name,
		Description: req.Description,
		FieldValues: req.FieldValues,
	}
	if err := s.svc.Templates.CreateTemplate(template); err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Template created",
		"template": template,
	})
}

func (s *APIServer) handleListTemplates(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	templates, err := s.svc.Templates.ListTemplates(user.CompanyID, c.Query("q"), limit)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "templates": templates})
}

func (s *APIServer) handleGetTemplate(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	template, err := s.svc.Templates.GetTemplateByID(user.CompanyID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "template": template})
}

func (s *APIServer) handleUpdateTemplate(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "template name is required"))
	}

	template := &models.ContractTemplate{
		ID:          c.Params("id"),
		CompanyID:   user.CompanyID,
		Name:        req.Name,
		Description: req.Description,
		FieldValues: req.FieldValues,
	}
	if err := s.svc.Templates.UpdateTemplate(template); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Template updated", "template": template})
}

func (s *APIServer) handleDeleteTemplate(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	if err := s.svc.Templates.DeleteTemplate(user.CompanyID, c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Template deleted"})
}
