package services

import (
	"context"
	"errors"
	"time"

	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/payment"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentService bridges the lifecycle and the payment gateway: it creates
// deposit intents for signed contracts, stores deferred payment methods, and
// applies settlement confirmations as the signed -> paid transition.
type PaymentService interface {
	CreateDepositIntent(ctx context.Context, contract *models.Contract) (*payment.Intent, error)
	SavePaymentMethod(ctx context.Context, contract *models.Contract, methodToken string) error
	VerifyIntent(ctx context.Context, intentID string) (*payment.Intent, error)
	MarkPaid(contractID, intentID string, amount int64) error
	FindByIntentID(intentID string) (*models.Contract, error)
}

type paymentService struct {
	db      *gorm.DB
	gateway payment.Gateway
	events  EventService
	log     *logrus.Logger
}

func NewPaymentService(db *gorm.DB, gateway payment.Gateway, events EventService, log *logrus.Logger) PaymentService {
	return &paymentService{db: db, gateway: gateway, events: events, log: log}
}

// CreateDepositIntent registers a payment intent for the contract deposit and
// remembers the intent id for webhook correlation.
func (s *paymentService) CreateDepositIntent(ctx context.Context, contract *models.Contract) (*payment.Intent, error) {
	if contract.DepositAmount <= 0 {
		return nil, apperr.New(apperr.KindPreconditionFailed, "contract has no deposit to collect")
	}
	if contract.Status != models.ContractStatusSigned && contract.Status != models.ContractStatusSent {
		return nil, apperr.Newf(apperr.KindPreconditionFailed, "deposit cannot be collected in status %q", contract.Status)
	}

	intent, err := s.gateway.CreateIntent(ctx, contract.ID, contract.DepositAmount, "usd")
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindDependencyFailed, "payment gateway rejected the deposit request")
	}

	if err := s.db.Model(&models.Contract{}).
		Where("id = ?", contract.ID).
		Update("payment_intent_id", intent.ID).Error; err != nil {
		return nil, err
	}
	return intent, nil
}

// SavePaymentMethod stores a card for deferred charging and records the audit
// event.
func (s *paymentService) SavePaymentMethod(ctx context.Context, contract *models.Contract, methodToken string) error {
	if contract.Status.IsTerminal() {
		return apperr.Newf(apperr.KindPreconditionFailed, "contract is %s", contract.Status)
	}

	method, err := s.gateway.SavePaymentMethod(ctx, contract.ID, methodToken)
	if err != nil {
		return apperr.Wrap(err, apperr.KindDependencyFailed, "payment method could not be saved")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: contract.ID,
			EventType:  models.EventPaymentMethodSaved,
			ActorType:  models.ActorClient,
			Metadata: models.JSON{
				"method_id": method.ID,
				"brand":     method.Brand,
				"last4":     method.Last4,
			},
		})
	})
}

// VerifyIntent fetches the intent back from the gateway and checks it actually
// succeeded. Webhook payloads are not trusted on their own; the gateway is the
// source of truth for settlement.
func (s *paymentService) VerifyIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	intent, err := s.gateway.GetIntent(ctx, intentID)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.KindDependencyFailed, "payment intent could not be verified")
	}
	if intent.Status != payment.IntentStatusSucceeded {
		return nil, apperr.Newf(apperr.KindPreconditionFailed, "payment intent is %s, not succeeded", intent.Status)
	}
	return intent, nil
}

// MarkPaid applies an external payment confirmation: signed -> paid. Repeated
// confirmations for the same contract are benign no-ops.
func (s *paymentService) MarkPaid(contractID, intentID string, amount int64) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Contract{}).
			Where("id = ? AND status = ?", contractID, models.ContractStatusSigned).
			Updates(map[string]interface{}{
				"status":  models.ContractStatusPaid,
				"paid_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var contract models.Contract
			if err := tx.Select("status").First(&contract, "id = ?", contractID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.New(apperr.KindNotFound, "contract not found")
				}
				return err
			}
			switch contract.Status {
			case models.ContractStatusPaid, models.ContractStatusCompleted:
				// Duplicate confirmation; already in the desired state.
				return nil
			default:
				return apperr.Newf(apperr.KindPreconditionFailed, "payment confirmed for contract in status %q", contract.Status)
			}
		}
		return s.events.Record(tx, &models.ContractEvent{
			ContractID: contractID,
			EventType:  models.EventPaymentConfirmed,
			ActorType:  models.ActorSystem,
			Metadata: models.JSON{
				"intent_id": intentID,
				"amount":    amount,
			},
		})
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"contract_id": contractID,
		"intent_id":   intentID,
	}).Info("payment confirmed")
	return nil
}

// FindByIntentID resolves the contract a gateway confirmation refers to.
func (s *paymentService) FindByIntentID(intentID string) (*models.Contract, error) {
	var contract models.Contract
	err := s.db.Where("payment_intent_id = ?", intentID).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "no contract for payment intent")
	}
	if err != nil {
		return nil, err
	}
	return &contract, nil
}
