package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/models"
	"gorm.io/gorm"
)

// EventService appends and lists contract audit events. Events are append-only
// and are written inside the same transaction as the action they record.
type EventService interface {
	Record(tx *gorm.DB, event *models.ContractEvent) error
	ListByContract(contractID string) ([]models.ContractEvent, error)
}

type eventService struct {
	db *gorm.DB
}

func NewEventService(db *gorm.DB) EventService {
	return &eventService{db: db}
}

// Record appends an event using the given transaction handle so the event and
// its triggering write commit or roll back together.
func (s *eventService) Record(tx *gorm.DB, event *models.ContractEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return tx.Create(event).Error
}

func (s *eventService) ListByContract(contractID string) ([]models.ContractEvent, error) {
	var events []models.ContractEvent
	err := s.db.Where("contract_id = ?", contractID).Order("created_at asc").Find(&events).Error
	return events, err
}
