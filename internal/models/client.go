package models

import (
	"time"

	"gorm.io/gorm"
)

// Client is the counterparty to a contract.
type Client struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyID string `gorm:"index;type:varchar(36);not null" json:"company_id"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"index;not null" json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
