package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/inklane/inklane/internal/api/middleware"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/services"
	"github.com/inklane/inklane/internal/utils"
)

type ContractRequest struct {
	Title              string      `json:"title" validate:"required"`
	ClientID           *string     `json:"client_id"`
	FieldValues        models.JSON `json:"field_values"`
	DepositAmount      int64       `json:"deposit_amount" validate:"gte=0"`
	TotalAmount        int64       `json:"total_amount" validate:"gte=0"`
	RequireCountersign bool        `json:"require_countersign"`
}

type ContractPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type CountersignRequest struct {
	FullName  string `json:"full_name" validate:"required"`
	ImageData string `json:"image_data"`
}

// checkBranding rejects branding writes for companies whose tier does not
// include the feature.
func (s *APIServer) checkBranding(companyID string, fieldValues models.JSON) error {
	if fieldValues == nil {
		return nil
	}
	if _, ok := fieldValues[models.BrandingKey]; !ok {
		return nil
	}
	allowed, err := s.svc.Entitlements.HasFeature(companyID, services.FeatureBranding)
	if err != nil {
		return err
	}
	if !allowed {
		return apperr.New(apperr.KindPreconditionFailed, "branding customization requires a Pro subscription")
	}
	return nil
}

func (s *APIServer) handleCreateContract(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req ContractRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "title is required and amounts must be non-negative"))
	}
	if err := s.checkBranding(user.CompanyID, req.FieldValues); err != nil {
		return s.respondError(c, err)
	}

	contract := &models.Contract{
		CompanyID:          user.CompanyID,
		ContractorID:       user.Sub,
		ClientID:           req.ClientID,
		Title:              req.Title,
		FieldValues:        req.FieldValues,
		DepositAmount:      req.DepositAmount,
		TotalAmount:        req.TotalAmount,
		RequireCountersign: req.RequireCountersign,
	}
	if err := s.svc.Contracts.CreateContract(contract); err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Contract created",
		"contract": contract,
	})
}

func (s *APIServer) handleListContracts(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	contracts, err := s.svc.Contracts.ListContracts(user.CompanyID, models.ContractStatus(c.Query("status")), limit)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "contracts": contracts})
}

func (s *APIServer) handleGetContract(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	contract, err := s.svc.Contracts.GetContract(user.CompanyID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "contract": contract})
}

func (s *APIServer) handleUpdateContract(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req ContractRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "title is required and amounts must be non-negative"))
	}
	if err := s.checkBranding(user.CompanyID, req.FieldValues); err != nil {
		return s.respondError(c, err)
	}

	contract := &models.Contract{
		ID:                 c.Params("id"),
		CompanyID:          user.CompanyID,
		ClientID:           req.ClientID,
		Title:              req.Title,
		FieldValues:        req.FieldValues,
		DepositAmount:      req.DepositAmount,
		TotalAmount:        req.TotalAmount,
		RequireCountersign: req.RequireCountersign,
	}
	if err := s.svc.Contracts.UpdateDraft(contract); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Contract updated", "contract": contract})
}

func (s *APIServer) handleSendContract(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	signingURL, err := s.svc.Contracts.Send(c.Context(), user.CompanyID, user.Sub, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"message":     "Contract sent to client",
		"signing_url": signingURL,
	})
}

func (s *APIServer) handleCancelContract(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	if err := s.svc.Contracts.Cancel(user.CompanyID, user.Sub, c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Contract cancelled"})
}

// handleContractorSign records the contractor's countersignature.
func (s *APIServer) handleContractorSign(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req CountersignRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "full name is required"))
	}

	contract, err := s.svc.Contracts.GetContract(user.CompanyID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}

	signature, err := s.svc.Signatures.Sign(contract, services.SignRequest{
		Party:     models.SignaturePartyContractor,
		FullName:  req.FullName,
		ImageData: req.ImageData,
		IPAddress: utils.ClientIP(c.Get("X-Forwarded-For"), c.Get("X-Real-Ip"), c.IP()),
		UserAgent: c.Get("User-Agent"),
		ActorID:   user.Sub,
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

func (s *APIServer) handleSetContractPassword(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	var req ContractPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return s.respondError(c, apperr.New(apperr.KindValidationFailed, "invalid request body"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.respondError(c, apperr.Wrap(err, apperr.KindValidationFailed, "password is required"))
	}

	if err := s.svc.Contracts.SetPassword(user.CompanyID, c.Params("id"), req.Password); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Contract password set"})
}

func (s *APIServer) handleClearContractPassword(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	if err := s.svc.Contracts.ClearPassword(user.CompanyID, c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Contract password removed"})
}

func (s *APIServer) handleListContractEvents(c *fiber.Ctx) error {
	user := middleware.GetAuthenticatedUser(c)

	// Ownership check before exposing the audit trail.
	contract, err := s.svc.Contracts.GetContract(user.CompanyID, c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	events, err := s.svc.Events.ListByContract(contract.ID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "events": events})
}
