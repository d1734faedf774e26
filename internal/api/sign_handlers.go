package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/services"
	"github.com/inklane/inklane/internal/utils"
)

type ClientSignRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	ImageData string `json:"image_data"`
	Password  string `json:"password"`
}

type SignPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type SavePaymentMethodRequest struct {
	MethodToken string `json:"method_token" validate:"required"`
	Password    string `json:"password"`
}

// signView is the contract as exposed to the signing page. Token hashes and
// the password hash never leave the server.
func signView(contract *models.Contract, unlocked bool) fiber.Map {
	view := fiber.Map{
		"id":                  contract.ID,
		"status":              contract.Status,
		"password_required":   contract.PasswordHash != "" && !unlocked,
		"require_countersign": contract.RequireCountersign,
	}
	if contract.PasswordHash != "" && !unlocked {
		return view
	}

	view["title"] = contract.Title
	view["field_values"] = contract.FieldValues
	view["deposit_amount"] = contract.DepositAmount
	view["total_amount"] = contract.TotalAmount
	view["signatures"] = contract.Signatures
	view["signed_at"] = contract.SignedAt
	view["paid_at"] = contract.PaidAt
	view["completed_at"] = contract.CompletedAt
	if contract.Client != nil {
		view["client_name"] = contract.Client.Name
	}
	return view
}

// handleSignView serves the contract behind a signing link. Tokens stay valid
// after signing so clients can revisit the link to check status.
func (s *APIServer) handleSignView(c *fiber.Ctx) error {
	contract, err := s.svc.Contracts.VerifyToken(c.Params("token"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"contract": signView(contract, false),
	})
}

// handleSignPassword checks the optional password gate and unlocks the full
// contract view.
func (s *APIServer) handleSignPassword(c *fiber.Ctx) error {
	var req SignPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "password is required"))
	}

	contract, err := s.svc.Contracts.VerifyToken(c.Params("token"))
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.svc.Contracts.VerifyPassword(contract, req.Password); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"contract": signView(contract, true),
	})
}

// handleClientSign records the client's signature on a token-verified
// contract.
func (s *APIServer) handleClientSign(c *fiber.Ctx) error {
	var req ClientSignRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "full name is required"))
	}

	contract, err := s.svc.Contracts.VerifyToken(c.Params("token"))
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.svc.Contracts.VerifyPassword(contract, req.Password); err != nil {
		return s.respondError(c, err)
	}

	signature, err := s.svc.Signatures.Sign(contract, services.SignRequest{
		Party:     models.SignaturePartyClient,
		FullName:  req.FullName,
		ImageData: req.ImageData,
		IPAddress: utils.ClientIP(c.Get("X-Forwarded-For"), c.Get("X-Real-Ip"), c.IP()),
		UserAgent: c.Get("User-Agent"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"message":   "Signature recorded",
		"signature": signature,
	})
}

// handleDepositIntent creates a payment intent for the contract deposit.
func (s *APIServer) handleDepositIntent(c *fiber.Ctx) error {
	contract, err := s.svc.Contracts.VerifyToken(c.Params("token"))
	if err != nil {
		return s.respondError(c, err)
	}

	intent, err := s.svc.Payments.CreateDepositIntent(c.Context(), contract)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment intent created",
		"intent": fiber.Map{
			"id":            intent.ID,
			"amount":        intent.Amount,
			"currency":      intent.Currency,
			"client_secret": intent.ClientSecret,
		},
	})
}

// handleSavePaymentMethod stores a card for deferred charging.
func (s *APIServer) handleSavePaymentMethod(c *fiber.Ctx) error {
	var req SavePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "payment method token is required"))
	}

	contract, err := s.svc.Contracts.VerifyToken(c.Params("token"))
	if err != nil {
		return s.respondError(c, err)
	}
	if err := s.svc.Contracts.VerifyPassword(contract, req.Password); err != nil {
		return s.respondError(c, err)
	}

	if err := s.svc.Payments.SavePaymentMethod(c.Context(), contract, req.MethodToken); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Payment method saved"})
}

// handleFinalize runs the finalization protocol from the public signing link.
func (s *APIServer) handleFinalize(c *fiber.Ctx) error {
	contract, err := s.svc.Contracts.VerifyToken(c.Params("token"))
	if err != nil {
		return s.respondError(c, err)
	}

	finalized, err := s.svc.Finalize.Finalize(c.Context(), contract.ID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Contract completed",
		"contract": signView(finalized, true),
	})
}
