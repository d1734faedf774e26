package api

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/apperr"
)

type PaymentWebhookRequest struct {
	Type     string `json:"type" validate:"required"`
	IntentID string `json:"intent_id" validate:"required"`
	Amount   int64  `json:"amount"`
}

// handlePaymentWebhook applies gateway confirmations. A succeeded intent moves
// the contract to paid and triggers finalization through the same idempotent
// guard as the public entry point.
func (s *APIServer) handlePaymentWebhook(c *fiber.Ctx) error {
	secret := c.Get("X-Webhook-Secret")
	if s.webhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) != 1 {
		return s.respondError(c, apperr.New(apperr.KindUnauthorized, "invalid webhook signature"))
	}

	var req PaymentWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid webhook payload"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "invalid webhook payload"))
	}

	if req.Type != "payment_intent.succeeded" {
		// Other event types are acknowledged and ignored.
		return c.JSON(fiber.Map{"success": true, "message": "Event ignored"})
	}

	// Confirm settlement with the gateway rather than trusting the payload.
	intent, err := s.svc.Payments.VerifyIntent(c.Context(), req.IntentID)
	if err != nil {
		return s.respondError(c, err)
	}

	contract, err := s.svc.Payments.FindByIntentID(intent.ID)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.svc.Payments.MarkPaid(contract.ID, intent.ID, intent.Amount); err != nil {
		return s.respondError(c, err)
	}

	// Finalize once paid; failures here are retryable via webhook redelivery.
	if _, err := s.svc.Finalize.Finalize(c.Context(), contract.ID); err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Payment applied"})
}
