package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/email"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/pdf"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ArtifactStore persists the rendered completion artifact.
type ArtifactStore interface {
	Save(contractID string, data []byte) (string, error)
}

// FinalizeService converts a signed-and-paid contract into a completed,
// immutable record. Finalize is idempotent: the paid -> completed conditional
// update elects exactly one winner; every other caller observes completed and
// returns success without repeating side effects.
type FinalizeService interface {
	Finalize(ctx context.Context, contractID string) (*models.Contract, error)
}

type finalizeService struct {
	db       *gorm.DB
	events   EventService
	renderer pdf.Renderer
	store    ArtifactStore
	mailer   email.Sender
	log      *logrus.Logger
}

func NewFinalizeService(db *gorm.DB, events EventService, renderer pdf.Renderer, store ArtifactStore, mailer email.Sender, log *logrus.Logger) FinalizeService {
	return &finalizeService{db: db, events: events, renderer: renderer, store: store, mailer: mailer, log: log}
}

func (s *finalizeService) Finalize(ctx context.Context, contractID string) (*models.Contract, error) {
	contract, err := s.load(contractID)
	if err != nil {
		return nil, err
	}

	switch contract.Status {
	case models.ContractStatusCompleted:
		// Already finalized; benign.
		return contract, nil
	case models.ContractStatusCancelled:
		return nil, apperr.New(apperr.KindContractCancelled, "this contract has been cancelled")
	case models.ContractStatusSigned, models.ContractStatusPaid:
		// Continue below.
	default:
		return nil, apperr.Newf(apperr.KindPreconditionFailed, "contract cannot be finalized in status %q", contract.Status)
	}

	if !contract.SignaturesComplete() {
		return nil, apperr.New(apperr.KindPreconditionFailed, "required signatures are not complete")
	}

	if contract.Status == models.ContractStatusSigned {
		if contract.DepositAmount > 0 {
			return nil, apperr.New(apperr.KindPreconditionFailed, "deposit payment has not been confirmed")
		}
		// Zero-deposit contracts skip the payment step: synthesize paid.
		if err := s.syntheticPay(contract.ID); err != nil {
			return nil, err
		}
		if contract, err = s.load(contractID); err != nil {
			return nil, err
		}
		if contract.Status == models.ContractStatusCompleted {
			return contract, nil
		}
	}

	// Render from persisted state before flipping status so a generation
	// failure leaves the contract in paid and finalize retryable.
	artifact, err := s.renderer.Render(ctx, contract, contract.Signatures)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindDependencyFailed, "failed to generate the contract document")
	}
	pdfPath, err := s.store.Save(contract.ID, artifact)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindDependencyFailed, "failed to store the contract document")
	}

	completedAt := time.Now()
	won := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contract{}).
			Where("id = ? AND status = ?", contract.ID, models.ContractStatusPaid).
			Updates(map[string]interface{}{
				"status":       models.ContractStatusCompleted,
				"completed_at": completedAt,
				"pdf_path":     pdfPath,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Raced with a concurrent finalize; the winner owns the side
			// effects.
			return nil
		}
		won = true
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: contract.ID,
			EventType:  models.EventContractCompleted,
			ActorType:  models.ActorSystem,
			Metadata:   models.JSON{"pdf_path": pdfPath},
		})
	})
	if err != nil {
		return nil, err
	}

	contract, err = s.load(contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != models.ContractStatusCompleted {
		return nil, apperr.Newf(apperr.KindInternal, "contract left in unexpected status %q after finalize", contract.Status)
	}

	if won {
		s.notifyCompleted(ctx, contract)
	}
	return contract, nil
}

// syntheticPay performs the zero-deposit signed -> paid transition. Losing the
// conditional update means another request got there first, which is fine.
func (s *finalizeService) syntheticPay(contractID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contract{}).
			Where("id = ? AND status = ? AND deposit_amount = 0", contractID, models.ContractStatusSigned).
			Updates(map[string]interface{}{
				"status":  models.ContractStatusPaid,
				"paid_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: contractID,
			EventType:  models.EventPaymentConfirmed,
			ActorType:  models.ActorSystem,
			Metadata:   models.JSON{"amount": 0, "synthetic": true},
		})
	})
}

// notifyCompleted emails both parties. Completion emails are best-effort:
// failures are logged, never unwound.
func (s *finalizeService) notifyCompleted(ctx context.Context, contract *models.Contract) {
	if contract.Client == nil {
		return
	}
	msg := &email.Message{
		To:       contract.Client.Email,
		ToName:   contract.Client.Name,
		Subject:  fmt.Sprintf("Contract completed: %s", contract.Title),
		BodyText: fmt.Sprintf("Your contract %q is fully signed and complete. A copy of the final document is attached to your account.\n", contract.Title),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.log.WithError(err).WithField("contract_id", contract.ID).Warn("failed to send completion email")
	}
}

func (s *finalizeService) load(contractID string) (*models.Contract, error) {
	var contract models.Contract
	err := s.db.Where("id = ?", contractID).
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
