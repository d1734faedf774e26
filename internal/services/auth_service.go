package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/inklane/inklane/internal/apperr"
	"github.com/inklane/inklane/internal/models"
	"github.com/inklane/inklane/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService registers contractors and issues session tokens.
type AuthService interface {
	Register(email, name, password, companyName string) (*models.Contractor, string, error)
	Login(email, password string) (*models.Contractor, string, error)
}

type authService struct {
	db   *gorm.DB
	auth *utils.JwtAuthenticator
}

func NewAuthService(db *gorm.DB, auth *utils.JwtAuthenticator) AuthService {
	return &authService{db: db, auth: auth}
}

// Register creates a company (free tier) and its first contractor.
func (s *authService) Register(email, name, password, companyName string) (*models.Contractor, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || name == "" || companyName == "" {
		return nil, "", apperr.Validation("missing required fields", map[string]string{
			"email": "required", "name": "required", "company_name": "required",
		})
	}
	if len(password) < 8 {
		return nil, "", apperr.Validation("password too short", map[string]string{
			"password": "must be at least 8 characters",
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindInternal, "failed to hash password")
	}

	contractor := &models.Contractor{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		company := &models.Company{ID: uuid.New().String(), Name: companyName}
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		sub := &models.Subscription{
			ID:        uuid.New().String(),
			CompanyID: company.ID,
			Tier:      models.TierFree,
			Status:    models.SubscriptionActive,
		}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		contractor.CompanyID = company.ID
		if err := tx.Create(contractor).Error; err != nil {
			msg := strings.ToLower(err.Error())
			if strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
				return apperr.New(apperr.KindConflict, "an account with this email already exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.auth.IssueToken(contractor.ID, contractor.Email, contractor.Name, contractor.CompanyID)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindInternal, "failed to issue session token")
	}
	return contractor, token, nil
}

func (s *authService) Login(email, password string) (*models.Contractor, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var contractor models.Contractor
	err := s.db.Where("email = ?", email).First(&contractor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(contractor.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperr.New(apperr.KindUnauthorized, "invalid email or password")
	}

	token, err := s.auth.IssueToken(contractor.ID, contractor.Email, contractor.Name, contractor.CompanyID)
	if err != nil {
		return nil, "", apperr.Wrap(err, apperr.KindInternal, "failed to issue session token")
	}
	return &contractor, token, nil
}
