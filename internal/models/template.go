package models

import (
	"time"

	"gorm.io/gorm"
)

// ContractTemplate is a reusable contract body owned by a company.
type ContractTemplate struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyID string `gorm:"index;type:varchar(36);not null" json:"company_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description,omitempty"`
	FieldValues JSON   `gorm:"type:text" json:"field_values"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
