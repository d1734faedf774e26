package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/email"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ContractService owns the contract lifecycle up to signing: drafting,
// sending, cancellation, the token access protocol and the password gate.
// Every transition is a conditional update re-checking the current status at
// write time, so concurrent requests race safely.
type ContractService interface {
	CreateContract(contract *models.Contract) error
	GetContract(companyID, id string) (*models.Contract, error)
	ListContracts(companyID string, status models.ContractStatus, limit int) ([]models.Contract, error)
	UpdateDraft(contract *models.Contract) error

	Send(ctx context.Context, companyID, contractorID, id string) (signingURL string, err error)
	Cancel(companyID, contractorID, id string) error

	SetPassword(companyID, id, password string) error
	ClearPassword(companyID, id string) error

	VerifyToken(token string) (*models.Contract, error)
	VerifyPassword(contract *models.Contract, password string) error
}

type ContractServiceConfig struct {
	BaseURL         string
	SigningTokenTTL time.Duration
}

type contractService struct {
	db     *gorm.DB
	events EventService
	mailer email.Sender
	log    *logrus.Logger
	cfg    ContractServiceConfig
}

func NewContractService(db *gorm.DB, events EventService, mailer email.Sender, log *logrus.Logger, cfg ContractServiceConfig) ContractService {
	return &contractService{db: db, events: events, mailer: mailer, log: log, cfg: cfg}
}

func (s *contractService) CreateContract(contract *models.Contract) error {
	if err := validateAmounts(contract.DepositAmount, contract.TotalAmount); err != nil {
		return err
	}
	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}
	contract.Status = models.ContractStatusDraft
	return s.db.Create(contract).Error
}

func (s *contractService) GetContract(companyID, id string) (*models.Contract, error) {
	var contract models.Contract
	err := s.db.Where("id = ? AND company_id = ?", id, companyID).
		Preload("Client").
		Preload("Signatures").
		First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "contract not found")
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (s *contractService) ListContracts(companyID string, status models.ContractStatus, limit int) ([]models.Contract, error) {
	query := s.db.Model(&models.Contract{}).Where("company_id = ?", companyID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var contracts []models.Contract
	err := query.Order("created_at desc").Preload("Client").Find(&contracts).Error
	return contracts, err
}

// UpdateDraft updates contract content. Only drafts are mutable; the status
// condition rejects updates that raced with a send or cancel.
func (s *contractService) UpdateDraft(contract *models.Contract) error {
	if err := validateAmounts(contract.DepositAmount, contract.TotalAmount); err != nil {
		return err
	}

	result := s.db.Model(&models.Contract{}).
		Where("id = ? AND company_id = ? AND status = ?", contract.ID, contract.CompanyID, models.ContractStatusDraft).
		Updates(map[string]interface{}{
			"title":               contract.Title,
			"field_values":        contract.FieldValues,
			"deposit_amount":      contract.DepositAmount,
			"total_amount":        contract.TotalAmount,
			"client_id":           contract.ClientID,
			"require_countersign": contract.RequireCountersign,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.explainContractWriteMiss(contract.CompanyID, contract.ID, "only draft contracts can be edited")
	}
	return nil
}

// Send issues a signing token, moves draft -> sent and emails the signing link
// to the client. The plaintext token leaves the system only inside the URL.
// Re-sending a sent contract reissues the token, invalidating the previous
// link; the plaintext is never recoverable, so a failed delivery is repaired
// by sending again.
func (s *contractService) Send(ctx context.Context, companyID, contractorID, id string) (string, error) {
	contract, err := s.GetContract(companyID, id)
	if err != nil {
		return "", err
	}
	if contract.ClientID == nil || contract.Client == nil {
		return "", apperr.New(apperr.KindValidationFailed, "contract needs a client before it can be sent")
	}
	if len(contract.FieldValues) == 0 && contract.Title == "" {
		return "", apperr.New(apperr.KindValidationFailed, "contract needs content before it can be sent")
	}

	token, tokenHash, err := utils.GenerateSigningToken()
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindInternal, "failed to issue signing token")
	}
	expiresAt := time.Now().Add(s.cfg.SigningTokenTTL)
	sentAt := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contract{}).
			Where("id = ? AND status IN ?", id,
				[]models.ContractStatus{models.ContractStatusDraft, models.ContractStatusSent}).
			Updates(map[string]interface{}{
				"status":                   models.ContractStatusSent,
				"signing_token_hash":       tokenHash,
				"signing_token":            "", // retire any legacy plaintext link
				"signing_token_expires_at": expiresAt,
				"sent_at":                  sentAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.explainContractWriteMiss(companyID, id, "only draft or sent contracts can be sent a signing link")
		}
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: id,
			EventType:  models.EventContractSent,
			ActorType:  models.ActorContractor,
			ActorID:    contractorID,
			Metadata: models.JSON{
				"client_id": *contract.ClientID,
				"resend":    contract.Status == models.ContractStatusSent,
			},
		})
	})
	if err != nil {
		return "", err
	}

	signingURL, err := utils.SigningURL(s.cfg.BaseURL, token)
	if err != nil {
		return "", apperr.Wrap(err, apperr.KindInternal, "failed to build signing URL")
	}

	// The signing link only reaches the client through this email, so a
	// delivery failure is surfaced rather than swallowed.
	msg := &email.Message{
		To:       contract.Client.Email,
		ToName:   contract.Client.Name,
		Subject:  fmt.Sprintf("Contract ready to sign: %s", contract.Title),
		BodyText: fmt.Sprintf("You have a contract waiting for your signature.\n\nReview and sign it here: %s\n", signingURL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.WithError(err).WithField("contract_id", id).Error("failed to deliver signing link email")
		return signingURL, apperr.Wrap(err, apperr.KindDependencyFailed, "contract was sent but the signing email could not be delivered")
	}

	return signingURL, nil
}

// Cancel moves any non-terminal contract to cancelled.
func (s *contractService) Cancel(companyID, contractorID, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contract{}).
			Where("id = ? AND company_id = ? AND status NOT IN ?", id, companyID,
				[]models.ContractStatus{models.ContractStatusCompleted, models.ContractStatusCancelled}).
			Updates(map[string]interface{}{
				"status":       models.ContractStatusCancelled,
				"cancelled_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.explainContractWriteMiss(companyID, id, "contract is already completed or cancelled")
		}
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: id,
			EventType:  models.EventContractCancelled,
			ActorType:  models.ActorContractor,
			ActorID:    contractorID,
		})
	})
}

// SetPassword enables the secondary password gate on a contract.
func (s *contractService) SetPassword(companyID, id, password string) error {
	if strings.TrimSpace(password) == "" {
		return apperr.Validation("password must not be empty", map[string]string{"password": "required"})
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Wrap(err, apperr.KindInternal, "failed to hash password")
	}

	return s.updatePasswordHash(companyID, id, string(hash), models.EventPasswordSet)
}

func (s *contractService) ClearPassword(companyID, id string) error {
	return s.updatePasswordHash(companyID, id, "", models.EventPasswordCleared)
}

func (s *contractService) updatePasswordHash(companyID, id, hash string, eventType models.EventType) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contract{}).
			Where("id = ? AND company_id = ? AND status NOT IN ?", id, companyID,
				[]models.ContractStatus{models.ContractStatusCompleted, models.ContractStatusCancelled}).
			Update("password_hash", hash)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.explainContractWriteMiss(companyID, id, "contract is already completed or cancelled")
		}
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: id,
			EventType:  eventType,
			ActorType:  models.ActorContractor,
		})
	})
}

// VerifyToken runs the token access protocol: hash lookup, legacy plaintext
// fallback, constant-time recheck, expiry, cancellation.
func (s *contractService) VerifyToken(token string) (*models.Contract, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindTokenInvalid, "signing token is required")
	}

	tokenHash := utils.HashSigningToken(token)

	var contract models.Contract
	err := s.db.Where("signing_token_hash = ?", tokenHash).
		Preload("Client").
		Preload("Signatures").
		First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Legacy contracts issued before token hashing carry the plaintext
		// token; matched here until the backfill migration retires the column.
		err = s.db.Where("signing_token = ? AND signing_token <> ''", token).
			Preload("Client").
			Preload("Signatures").
			First(&contract).Error
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindTokenInvalid, "invalid signing link")
	}
	if err != nil {
		return nil, err
	}

	if contract.SigningTokenHash != "" && !utils.VerifySigningToken(token, contract.SigningTokenHash) {
		return nil, apperr.New(apperr.KindTokenInvalid, "invalid signing link")
	}
	if contract.SigningTokenExpiresAt == nil || time.Now().After(*contract.SigningTokenExpiresAt) {
		return nil, apperr.New(apperr.KindTokenExpired, "this signing link has expired")
	}
	if contract.Status == models.ContractStatusCancelled {
		return nil, apperr.New(apperr.KindContractCancelled, "this contract has been cancelled")
	}

	return &contract, nil
}

// VerifyPassword checks the optional password gate. Contracts without a
// password pass trivially.
func (s *contractService) VerifyPassword(contract *models.Contract, password string) error {
	if contract.PasswordHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(contract.PasswordHash), []byte(password)); err != nil {
		return apperr.New(apperr.KindUnauthorized, "incorrect contract password")
	}
	return nil
}

// explainContractWriteMiss turns a zero-rows-affected conditional update into
// the right error: NotFound when the contract isn't visible to the company,
// PreconditionFailed otherwise.
func (s *contractService) explainContractWriteMiss(companyID, id, reason string) error {
	var count int64
	if err := s.db.Model(&models.Contract{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.New(apperr.KindNotFound, "contract not found")
	}
	return apperr.New(apperr.KindPreconditionFailed, reason)
}

func validateAmounts(deposit, total int64) error {
	fields := map[string]string{}
	if deposit < 0 {
		fields["deposit_amount"] = "must be non-negative"
	}
	if total < 0 {
		fields["total_amount"] = "must be non-negative"
	}
	if deposit > total {
		fields["deposit_amount"] = "must not exceed total amount"
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid contract amounts", fields)
	}
	return nil
}
