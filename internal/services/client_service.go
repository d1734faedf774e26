package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"gorm.io/gorm"
)

// ClientService handles client CRUD scoped to the owning company.
type ClientService interface {
	CreateClient(client *models.Client) error
	GetClientByID(companyID, id string) (*models.Client, error)
	ListClients(companyID, keyword string, limit int) ([]models.Client, error)
	UpdateClient(client *models.Client) error
	DeleteClient(companyID, id string) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.New().String()
	}
	return s.db.Create(client).Error
}

func (s *clientService) GetClientByID(companyID, id string) (*models.Client, error) {
	var client models.Client
	err := s.db.Where("id = ? AND company_id = ?", id, companyID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "client not found")
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// ListClients returns clients with optional keyword filtering
func (s *clientService) ListClients(companyID, keyword string, limit int) ([]models.Client, error) {
	query := s.db.Model(&models.Client{}).Where("company_id = ?", companyID)

	if keyword != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	var clients []models.Client
	err := query.Find(&clients).Error
	return clients, err
}

func (s *clientService) UpdateClient(client *models.Client) error {
	result := s.db.Model(&models.Client{}).
		Where("id = ? AND company_id = ?", client.ID, client.CompanyID).
		Updates(map[string]interface{}{
			"name":    client.Name,
			"email":   client.Email,
			"phone":   client.Phone,
			"address": client.Address,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "client not found")
	}
	return nil
}

func (s *clientService) DeleteClient(companyID, id string) error {
	result := s.db.Where("company_id = ?", companyID).Delete(&models.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "client not found")
	}
	return nil
}
