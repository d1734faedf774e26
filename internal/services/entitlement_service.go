package services

import (
	"errors"

	"github.com/inklane/inklane/internal/models"
	"gorm.io/gorm"
)

type Feature string

const (
	FeatureBranding   Feature = "branding"
	FeatureAutoCharge Feature = "auto_charge"
)

// tierFeatures maps each subscription tier to its entitled features.
var tierFeatures = map[models.SubscriptionTier]map[Feature]bool{
	models.TierFree: {},
	models.TierPro: {
		FeatureBranding: true,
	},
	models.TierBusiness: {
		FeatureBranding:   true,
		FeatureAutoCharge: true,
	},
}

// EntitlementService answers whether a company's subscription tier permits a
// feature.
type EntitlementService interface {
	HasFeature(companyID string, feature Feature) (bool, error)
}

type entitlementService struct {
	db *gorm.DB
}

func NewEntitlementService(db *gorm.DB) EntitlementService {
	return &entitlementService{db: db}
}

func (s *entitlementService) HasFeature(companyID string, feature Feature) (bool, error) {
	var sub models.Subscription
	err := s.db.Where("company_id = ?", companyID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No subscription row means free tier.
		return tierFeatures[models.TierFree][feature], nil
	}
	if err != nil {
		return false, err
	}
	if sub.Status != models.SubscriptionActive {
		return tierFeatures[models.TierFree][feature], nil
	}
	return tierFeatures[sub.Tier][feature], nil
}
