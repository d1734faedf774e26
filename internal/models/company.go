package models

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionTier string

const (
	TierFree     SubscriptionTier = "free"
	TierPro      SubscriptionTier = "pro"
	TierBusiness SubscriptionTier = "business"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Company owns clients, contracts and the subscription that gates optional
// features.
type Company struct {
	ID   string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name string `gorm:"not null" json:"name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Subscription *Subscription `gorm:"foreignKey:CompanyID" json:"subscription,omitempty"`
}

type Subscription struct {
	ID        string             `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyID string             `gorm:"uniqueIndex;type:varchar(36);not null" json:"company_id"`
	Tier      SubscriptionTier   `gorm:"type:varchar(16);default:free" json:"tier"`
	Status    SubscriptionStatus `gorm:"type:varchar(16);default:active" json:"status"`

	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contractor is an authenticated user who authors contracts.
type Contractor struct {
	ID        string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CompanyID string `gorm:"index;type:varchar(36);not null" json:"company_id"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
