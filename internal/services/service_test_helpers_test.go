package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/email"
	"github.com/inklane/inklane/internal/logging"
	"github.com/inklane/inklane/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use in-memory SQLite database for testing
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to connect to in-memory database")

	err = db.AutoMigrate(
		&models.Company{},
		&models.Subscription{},
		&models.Contractor{},
		&models.Client{},
		&models.ContractTemplate{},
		&models.Contract{},
		&models.Signature{},
		&models.ContractEvent{},
	)
	require.NoError(t, err, "Failed to run migrations")

	if testing.Verbose() {
		db = db.Debug()
	}

	return db
}

func testLogger() *logrus.Logger {
	return logging.New()
}

// recordingMailer captures sent messages; Fail makes every send error.
type recordingMailer struct {
	Sent []*email.Message
	Fail bool
}

func (m *recordingMailer) Send(_ context.Context, msg *email.Message) error {
	if m.Fail {
		return errDeliberate
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

var errDeliberate = &deliberateError{}

type deliberateError struct{}

func (e *deliberateError) Error() string { return "deliberate failure" }

func seedCompany(t *testing.T, db *gorm.DB, tier models.SubscriptionTier) *models.Company {
	company := &models.Company{ID: uuid.New().String(), Name: "Testco"}
	require.NoError(t, db.Create(company).Error)
	sub := &models.Subscription{
		ID:        uuid.New().String(),
		CompanyID: company.ID,
		Tier:      tier,
		Status:    models.SubscriptionActive,
	}
	require.NoError(t, db.Create(sub).Error)
	return company
}

func seedClient(t *testing.T, db *gorm.DB, companyID string) *models.Client {
	client := &models.Client{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      "Jane Doe",
		Email:     "jane@example.com",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedContract(t *testing.T, db *gorm.DB, companyID, clientID string, mutate func(*models.Contract)) *models.Contract {
	contract := &models.Contract{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		ContractorID: uuid.New().String(),
		ClientID:     &clientID,
		Title:        "Kitchen remodel",
		FieldValues:  models.JSON{"scope": "demo and rebuild"},
		Status:       models.ContractStatusDraft,
		TotalAmount:  50000,
	}
	if mutate != nil {
		mutate(contract)
	}
	require.NoError(t, db.Create(contract).Error)
	return contract
}

// sendContract moves a seeded draft to sent with a fresh token and returns
// the plaintext token.
func sendContract(t *testing.T, db *gorm.DB, svc ContractService, companyID, contractorID, id string) string {
	url, err := svc.Send(context.Background(), companyID, contractorID, id)
	require.NoError(t, err)
	// Token is the last URL segment.
	idx := len(url) - 1
	for idx >= 0 && url[idx] != '/' {
		idx--
	}
	token := url[idx+1:]
	require.NotEmpty(t, token)
	return token
}

func newContractService(db *gorm.DB, mailer email.Sender) ContractService {
	return NewContractService(db, NewEventService(db), mailer, testLogger(), ContractServiceConfig{
		BaseURL:         "https://app.inklane.test",
		SigningTokenTTL: 30 * 24 * time.Hour,
	})
}
