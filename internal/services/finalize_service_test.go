package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// countingRenderer counts renders and can fail a configurable number of times.
type countingRenderer struct {
	Renders   int
	FailTimes int
}

func (r *countingRenderer) Render(_ context.Context, contract *models.Contract, _ []models.Signature) ([]byte, error) {
	r.Renders++
	if r.FailTimes > 0 {
		r.FailTimes--
		return nil, errDeliberate
	}
	return []byte("%PDF-1.4 " + contract.ID), nil
}

// countingStore records saves keyed by contract id.
type countingStore struct {
	Saves map[string]int
}

func (s *countingStore) Save(contractID string, _ []byte) (string, error) {
	if s.Saves == nil {
		s.Saves = map[string]int{}
	}
	s.Saves[contractID]++
	return "/artifacts/" + contractID + ".pdf", nil
}

func seedSignature(t *testing.T, db *gorm.DB, contractID string, party models.SignatureParty) {
	require.NoError(t, db.Create(&models.Signature{
		ID:          uuid.New().String(),
		ContractID:  contractID,
		Party:       party,
		FullName:    "Jane Doe",
		ContentHash: "sha256:test",
		SignedAt:    time.Now(),
	}).Error)
}

func TestFinalize(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	newFinalize := func(renderer *countingRenderer, store *countingStore, mailer *recordingMailer) FinalizeService {
		return NewFinalizeService(db, NewEventService(db), renderer, store, mailer, testLogger())
	}

	seedSigned := func(t *testing.T, deposit int64) *models.Contract {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		now := time.Now()
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSigned
			c.DepositAmount = deposit
			c.SignedAt = &now
		})
		seedSignature(t, db, contract.ID, models.SignaturePartyClient)
		return contract
	}

	t.Run("zero-deposit contract completes in one call", func(t *testing.T) {
		renderer := &countingRenderer{}
		store := &countingStore{}
		mailer := &recordingMailer{}
		svc := newFinalize(renderer, store, mailer)
		contract := seedSigned(t, 0)

		done, err := svc.Finalize(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContractStatusCompleted, done.Status)
		require.NotNil(t, done.PaidAt)
		require.NotNil(t, done.CompletedAt)
		assert.False(t, done.CompletedAt.Before(*done.PaidAt), "payment precedes completion")
		assert.Equal(t, "/artifacts/"+contract.ID+".pdf", done.PDFPath)
		assert.Equal(t, 1, store.Saves[contract.ID])
		require.Len(t, mailer.Sent, 1)
		assert.Equal(t, "jane@example.com", mailer.Sent[0].To)

		// Synthetic payment and completion both leave audit events.
		var events []models.ContractEvent
		require.NoError(t, db.Where("contract_id = ?", contract.ID).Order("created_at").Find(&events).Error)
		require.Len(t, events, 2)
		assert.Equal(t, models.EventPaymentConfirmed, events[0].EventType)
		assert.Equal(t, true, events[0].Metadata["synthetic"])
		assert.Equal(t, models.EventContractCompleted, events[1].EventType)
	})

	t.Run("finalize is idempotent", func(t *testing.T) {
		renderer := &countingRenderer{}
		store := &countingStore{}
		mailer := &recordingMailer{}
		svc := newFinalize(renderer, store, mailer)
		contract := seedSigned(t, 0)

		first, err := svc.Finalize(ctx, contract.ID)
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			again, err := svc.Finalize(ctx, contract.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ContractStatusCompleted, again.Status)
			assert.Equal(t, first.CompletedAt.Unix(), again.CompletedAt.Unix(), "completion timestamp is stable")
		}

		assert.Equal(t, 1, renderer.Renders, "artifact rendered once")
		assert.Equal(t, 1, store.Saves[contract.ID], "artifact stored once")
		assert.Len(t, mailer.Sent, 1, "completion email sent once")

		var count int64
		require.NoError(t, db.Model(&models.ContractEvent{}).
			Where("contract_id = ? AND event_type = ?", contract.ID, models.EventContractCompleted).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("deposit contract cannot finalize before payment", func(t *testing.T) {
		svc := newFinalize(&countingRenderer{}, &countingStore{}, &recordingMailer{})
		contract := seedSigned(t, 10000)

		_, err := svc.Finalize(ctx, contract.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindPreconditionFailed))
		assert.Contains(t, err.Error(), "deposit")

		var stored models.Contract
		require.NoError(t, db.First(&stored, "id = ?", contract.ID).Error)
		assert.Equal(t, models.ContractStatusSigned, stored.Status)
	})

	t.Run("deposit contract finalizes after payment confirmation", func(t *testing.T) {
		store := &countingStore{}
		mailer := &recordingMailer{}
		svc := newFinalize(&countingRenderer{}, store, mailer)
		payments := NewPaymentService(db, nil, NewEventService(db), testLogger())
		contract := seedSigned(t, 10000)

		require.NoError(t, payments.MarkPaid(contract.ID, "pi_123", 10000))

		done, err := svc.Finalize(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContractStatusCompleted, done.Status)
		require.NotNil(t, done.PaidAt)
		assert.Equal(t, 1, store.Saves[contract.ID])
	})

	t.Run("render failure leaves contract paid and retryable", func(t *testing.T) {
		renderer := &countingRenderer{FailTimes: 1}
		store := &countingStore{}
		mailer := &recordingMailer{}
		svc := newFinalize(renderer, store, mailer)
		contract := seedSigned(t, 0)

		_, err := svc.Finalize(ctx, contract.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindDependencyFailed))

		var stored models.Contract
		require.NoError(t, db.First(&stored, "id = ?", contract.ID).Error)
		assert.Equal(t, models.ContractStatusPaid, stored.Status, "payment transition sticks, completion does not")
		assert.Empty(t, stored.PDFPath)
		assert.Nil(t, stored.CompletedAt)

		done, err := svc.Finalize(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContractStatusCompleted, done.Status)
		assert.Equal(t, 2, renderer.Renders)
		assert.Len(t, mailer.Sent, 1)
	})

	t.Run("incomplete countersign blocks finalize", func(t *testing.T) {
		svc := newFinalize(&countingRenderer{}, &countingStore{}, &recordingMailer{})
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSigned
			c.RequireCountersign = true
		})
		seedSignature(t, db, contract.ID, models.SignaturePartyClient)

		_, err := svc.Finalize(ctx, contract.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindPreconditionFailed))
		assert.Contains(t, err.Error(), "signatures")
	})

	t.Run("cancelled contract refuses finalize", func(t *testing.T) {
		svc := newFinalize(&countingRenderer{}, &countingStore{}, &recordingMailer{})
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusCancelled
		})

		_, err := svc.Finalize(ctx, contract.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindContractCancelled))
	})

	t.Run("draft contract refuses finalize", func(t *testing.T) {
		svc := newFinalize(&countingRenderer{}, &countingStore{}, &recordingMailer{})
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, nil)

		_, err := svc.Finalize(ctx, contract.ID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindPreconditionFailed))
	})

	t.Run("unknown contract", func(t *testing.T) {
		svc := newFinalize(&countingRenderer{}, &countingStore{}, &recordingMailer{})
		_, err := svc.Finalize(ctx, uuid.New().String())
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("completion email failure does not fail finalize", func(t *testing.T) {
		mailer := &recordingMailer{Fail: true}
		svc := newFinalize(&countingRenderer{}, &countingStore{}, mailer)
		contract := seedSigned(t, 0)

		done, err := svc.Finalize(ctx, contract.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContractStatusCompleted, done.Status)
	})
}
