package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/api/middleware"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
)

type ClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (s *APIServer) handleCreateClient(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "name and a valid email are required"))
	}

	client := &models.Client{
		CompanyID: user.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.svc.Clients.CreateClient(client); err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Client created",
		"client":  client,
	})
}

func (s *APIServer) handleListClients(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	clients, err := s.svc.Clients.ListClients(user.CompanyID, c.Query("q"), limit)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "clients": clients})
}

func (s *APIServer) handleGetClient(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	client, err := s.svc.Clients.GetClientByID(user.CompanyID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "client": client})
}

func (s *APIServer) handleUpdateClient(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "name and a valid email are required"))
	}

	client := &models.Client{
		ID:        c.Params("id"),
		CompanyID: user.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
	}
	if err := s.svc.Clients.UpdateClient(client); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Client updated", "client": client})
}

func (s *APIServer) handleDeleteClient(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	if err := s.svc.Clients.DeleteClient(user.CompanyID, c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Client deleted"})
}
