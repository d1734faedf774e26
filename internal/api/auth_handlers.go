package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/apperr"
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Name        string `json:"name" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
	CompanyName string `json:"company_name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *APIServer) handleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "invalid registration details"))
	}

	contractor, token, err := s.svc.Auth.Register(req.Email, req.Name, req.Password, req.CompanyName)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"message":    "Account created",
		"token":      token,
		"contractor": contractor,
	})
}

func (s *APIServer) handleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "email and password are required"))
	}

	contractor, token, err := s.svc.Auth.Login(req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Logged in",
		"token":      token,
		"contractor": contractor,
	})
}
