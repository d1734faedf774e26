package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"gorm.io/gorm"
)

// TemplateService handles contract template operations
type TemplateService interface {
	CreateTemplate(template *models.ContractTemplate) error
	GetTemplateByID(companyID, id string) (*models.ContractTemplate, error)
	ListTemplates(companyID, keyword string, limit int) ([]models.ContractTemplate, error)
	UpdateTemplate(template *models.ContractTemplate) error
	DeleteTemplate(companyID, id string) error
}

type templateService struct {
	db *gorm.DB
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(db *gorm.DB) TemplateService {
	return &templateService{db: db}
}

// CreateTemplate creates a new template
func (s *templateService) CreateTemplate(template *models.ContractTemplate) error {
	if template.ID == "" {
		template.ID = uuid.New().String()
	}
	return s.db.Create(template).Error
}

// GetTemplateByID returns a template owned by the company
func (s *templateService) GetTemplateByID(companyID, id string) (*models.ContractTemplate, error) {
	var template models.ContractTemplate
	err := s.db.Where("id = ? AND company_id = ?", id, companyID).First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "template not found")
	}
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// ListTemplates returns templates with optional filtering
func (s *templateService) ListTemplates(companyID, keyword string, limit int) ([]models.ContractTemplate, error) {
	query := s.db.Model(&models.ContractTemplate{}).Where("company_id = ?", companyID)

	if keyword != "" {
		query = query.Where("name LIKE ? OR description LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	var templates []models.ContractTemplate
	err := query.Find(&templates).Error
	return templates, err
}

// UpdateTemplate updates an existing template
func (s *templateService) UpdateTemplate(template *models.ContractTemplate) error {
	result := s.db.Model(&models.ContractTemplate{}).
		Where("id = ? AND company_id = ?", template.ID, template.CompanyID).
		Updates(map[string]interface{}{
			"name":         template.Name,
			"description":  template.Description,
			"field_values": template.FieldValues,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "template not found")
	}
	return nil
}

// DeleteTemplate deletes a template owned by the company
func (s *templateService) DeleteTemplate(companyID, id string) error {
	result := s.db.Where("company_id = ?", companyID).Delete(&models.ContractTemplate{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "template not found")
	}
	return nil
}
