package services

import (
	"testing"

	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	db := setupTestDB(t)
	svc := NewSignatureService(db, NewEventService(db))

	loadContract := func(t *testing.T, id string) *models.Contract {
		var contract models.Contract
		require.NoError(t, db.Preload("Signatures").First(&contract, "id = ?", id).Error)
		return &contract
	}

	t.Run("client signature completes a single-signer contract", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		sig, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:     models.SignaturePartyClient,
			FullName:  "  Jane Doe  ",
			IPAddress: "203.0.113.7",
			UserAgent: "Mozilla/5.0",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", sig.FullName, "name is trimmed")
		assert.NotEmpty(t, sig.ContentHash)

		stored := loadContract(t, contract.ID)
		assert.Equal(t, models.ContractStatusSigned, stored.Status)
		require.NotNil(t, stored.SignedAt)

		// Signature and audit event are paired
		var events []models.ContractEvent
		require.NoError(t, db.Where("contract_id = ?", contract.ID).Find(&events).Error)
		require.Len(t, events, 1)
		assert.Equal(t, models.EventClientSigned, events[0].EventType)
		assert.Equal(t, models.ActorClient, events[0].ActorType)
	})

	t.Run("countersign contract needs both parties", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
			c.RequireCountersign = true
		})

		_, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.NoError(t, err)

		stored := loadContract(t, contract.ID)
		assert.Equal(t, models.ContractStatusSent, stored.Status, "one of two signatures is not enough")

		_, err = svc.Sign(stored, SignRequest{
			Party:    models.SignaturePartyContractor,
			FullName: "Bob Builder",
			ActorID:  contract.ContractorID,
		})
		require.NoError(t, err)

		stored = loadContract(t, contract.ID)
		assert.Equal(t, models.ContractStatusSigned, stored.Status)
	})

	t.Run("contractor may sign first", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
			c.RequireCountersign = true
		})

		_, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyContractor,
			FullName: "Bob Builder",
		})
		require.NoError(t, err)

		stored := loadContract(t, contract.ID)
		assert.Equal(t, models.ContractStatusSent, stored.Status)
	})

	t.Run("double signing the same slot conflicts", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		_, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.NoError(t, err)

		_, err = svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConflict))

		var count int64
		require.NoError(t, db.Model(&models.Signature{}).
			Where("contract_id = ?", contract.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count, "no duplicate signature record")
	})

	t.Run("stale read still cannot duplicate", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		// Both requests read the contract before either signs.
		first := loadContract(t, contract.ID)
		second := loadContract(t, contract.ID)

		_, err := svc.Sign(first, SignRequest{Party: models.SignaturePartyClient, FullName: "Jane Doe"})
		require.NoError(t, err)

		_, err = svc.Sign(second, SignRequest{Party: models.SignaturePartyClient, FullName: "Jane Doe"})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConflict), "unique index backstops the read-time check")
	})

	t.Run("rejects empty name", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		_, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "   ",
		})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindValidationFailed))

		var count int64
		require.NoError(t, db.Model(&models.Signature{}).
			Where("contract_id = ?", contract.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejects signing a draft", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, nil)

		_, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindPreconditionFailed))
	})

	t.Run("cancel committed after the read rejects the signature", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		// The request read the contract while it was still sent.
		snapshot := loadContract(t, contract.ID)

		require.NoError(t, db.Model(&models.Contract{}).
			Where("id = ?", contract.ID).
			Update("status", models.ContractStatusCancelled).Error)

		_, err := svc.Sign(snapshot, SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindContractCancelled), "write-time status check wins over the stale read")

		var sigCount, eventCount int64
		require.NoError(t, db.Model(&models.Signature{}).
			Where("contract_id = ?", contract.ID).Count(&sigCount).Error)
		require.NoError(t, db.Model(&models.ContractEvent{}).
			Where("contract_id = ?", contract.ID).Count(&eventCount).Error)
		assert.Zero(t, sigCount, "no signature on a cancelled contract")
		assert.Zero(t, eventCount, "the audit event rolls back with the signature")
	})

	t.Run("completion committed after the read rejects the signature", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
			c.RequireCountersign = true
		})

		snapshot := loadContract(t, contract.ID)

		require.NoError(t, db.Model(&models.Contract{}).
			Where("id = ?", contract.ID).
			Update("status", models.ContractStatusCompleted).Error)

		_, err := svc.Sign(snapshot, SignRequest{
			Party:    models.SignaturePartyContractor,
			FullName: "Bob Builder",
		})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindPreconditionFailed))
	})

	t.Run("rejects signing a cancelled contract", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusCancelled
		})

		_, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindContractCancelled))
	})

	t.Run("content hash detects later mutation", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		sig, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:    models.SignaturePartyClient,
			FullName: "Jane Doe",
		})
		require.NoError(t, err)

		// Unmutated terms still match
		fresh, err := utils.HashContent(loadContract(t, contract.ID).CurrentTerms())
		require.NoError(t, err)
		assert.Equal(t, sig.ContentHash, fresh)

		// Mutate the terms and the stored hash no longer matches
		require.NoError(t, db.Model(&models.Contract{}).
			Where("id = ?", contract.ID).
			Update("total_amount", 99999).Error)

		mutated, err := utils.HashContent(loadContract(t, contract.ID).CurrentTerms())
		require.NoError(t, err)
		assert.NotEqual(t, sig.ContentHash, mutated)
	})

	t.Run("user agent is truncated", func(t *testing.T) {
		company := seedCompany(t, db, models.TierFree)
		client := seedClient(t, db, company.ID)
		contract := seedContract(t, db, company.ID, client.ID, func(c *models.Contract) {
			c.Status = models.ContractStatusSent
		})

		longUA := make([]byte, 2048)
		for i := range longUA {
			longUA[i] = 'a'
		}
		sig, err := svc.Sign(loadContract(t, contract.ID), SignRequest{
			Party:     models.SignaturePartyClient,
			FullName:  "Jane Doe",
			UserAgent: string(longUA),
		})
		require.NoError(t, err)
		assert.Len(t, sig.UserAgent, utils.MaxUserAgentLength)
	})
}
