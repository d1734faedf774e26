package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/utils"
	"gorm.io/gorm"
)

// SignRequest carries one party's signature and its integrity context.
type SignRequest struct {
	Party     models.SignatureParty
	FullName  string
	ImageData string
	IPAddress string
	UserAgent string
	ActorID   string // contractor id for countersigns, empty for clients
}

// SignatureService records contractor and client signatures. Signing is
// order-agnostic and append-only; a signature and its audit event are written
// in one transaction, and the contract moves to signed once the required
// signature set is complete.
type SignatureService interface {
	Sign(contract *models.Contract, req SignRequest) (*models.Signature, error)
	ListByContract(contractID string) ([]models.Signature, error)
}

type signatureService struct {
	db     *gorm.DB
	events EventService
}

func NewSignatureService(db *gorm.DB, events EventService) SignatureService {
	return &signatureService{db: db, events: events}
}

func (s *signatureService) Sign(contract *models.Contract, req SignRequest) (*models.Signature, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, apperr.Validation("full name is required", map[string]string{"full_name": "required"})
	}
	if req.Party != models.SignaturePartyContractor && req.Party != models.SignaturePartyClient {
		return nil, apperr.Validation("invalid signing party", map[string]string{"party": "must be contractor or client"})
	}

	switch contract.Status {
	case models.ContractStatusSent, models.ContractStatusSigned:
		// Countersigning stays possible after the other party completed first.
	case models.ContractStatusCancelled:
		return nil, apperr.New(apperr.KindContractCancelled, "this contract has been cancelled")
	default:
		return nil, apperr.Newf(apperr.KindPreconditionFailed, "contract cannot be signed in status %q", contract.Status)
	}

	if contract.HasSignature(req.Party) {
		return nil, apperr.Newf(apperr.KindConflict, "the %s has already signed this contract", req.Party)
	}

	contentHash, err := utils.HashContent(contract.CurrentTerms())
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindInternal, "failed to hash contract terms")
	}

	now := time.Now()
	signature := &models.Signature{
		ID:          uuid.New().String(),
		ContractID:  contract.ID,
		Party:       req.Party,
		FullName:    fullName,
		ImageData:   req.ImageData,
		ContentHash: contentHash,
		IPAddress:   req.IPAddress,
		UserAgent:   utils.TruncateUserAgent(req.UserAgent),
		SignedAt:    now,
	}

	eventType := models.EventClientSigned
	actorType := models.ActorClient
	if req.Party == models.SignaturePartyContractor {
		eventType = models.EventContractorSigned
		actorType = models.ActorContractor
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-assert status at write time: a cancel that committed after the
		// caller's read must reject the signature, not orphan it.
		guard := tx.Model(&models.Contract{}).
			Where("id = ? AND status IN ?", contract.ID,
				[]models.ContractStatus{models.ContractStatusSent, models.ContractStatusSigned}).
			Update("updated_at", now)
		if guard.Error != nil {
			return guard.Error
		}
		if guard.RowsAffected == 0 {
			var current models.Contract
			if err := tx.Select("status").First(&current, "id = ?", contract.ID).Error; err != nil {
				return err
			}
			if current.Status == models.ContractStatusCancelled {
				return apperr.New(apperr.KindContractCancelled, "this contract has been cancelled")
			}
			return apperr.Newf(apperr.KindPreconditionFailed, "contract cannot be signed in status %q", current.Status)
		}

		// The unique index on (contract_id, party) is the write-time guard
		// against double signing; the read above only produces the friendlier
		// error message.
		if err := tx.Create(signature).Error; err != nil {
			return translateDuplicate(err, req.Party)
		}

		if err := s.events.Record(tx, &models.ContractEvent{
			ContractID: contract.ID,
			EventType:  eventType,
			ActorType:  actorType,
			ActorID:    req.ActorID,
			Metadata: models.JSON{
				"full_name":    fullName,
				"content_hash": contentHash,
				"ip_address":   signature.IPAddress,
			},
		}); err != nil {
			return err
		}

		// Re-derive completeness inside the transaction from persisted rows.
		var count int64
		parties := []models.SignatureParty{models.SignaturePartyClient}
		if contract.RequireCountersign {
			parties = append(parties, models.SignaturePartyContractor)
		}
		if err := tx.Model(&models.Signature{}).
			Where("contract_id = ? AND party IN ?", contract.ID, parties).
			Count(&count).Error; err != nil {
			return err
		}
		if count < int64(len(parties)) {
			return nil
		}

		// All required signatures present: sent -> signed. A raced second
		// writer loses the conditional update, which is fine; the contract is
		// already signed.
		return tx.Model(&models.Contract{}).
			Where("id = ? AND status = ?", contract.ID, models.ContractStatusSent).
			Updates(map[string]interface{}{
				"status":    models.ContractStatusSigned,
				"signed_at": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return signature, nil
}

func (s *signatureService) ListByContract(contractID string) ([]models.Signature, error) {
	var signatures []models.Signature
	err := s.db.Where("contract_id = ?", contractID).Order("signed_at asc").Find(&signatures).Error
	return signatures, err
}

func translateDuplicate(err error, party models.SignatureParty) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		return apperr.Newf(apperr.KindConflict, "the %s has already signed this contract", party)
	}
	return err
}
