package server

import (
	"github.com/inklane/inklane/internal/api"
	"github.com/inklane/inklane/internal/config"
	"github.com/inklane/inklane/internal/email"
	"github.com/inklane/inklane/internal/payment"
	"github.com/inklane/inklane/internal/pdf"
	"github.com/inklane/inklane/internal/services"
	"github.com/inklane/inklane/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InitializeServices wires the service graph from configuration.
func InitializeServices(db *gorm.DB, cfg *config.Config, authenticator *utils.JwtAuthenticator, log *logrus.Logger) (api.Services, error) {
	var mailer email.Sender
	if cfg.SendgridAPIKey != "" {
		mailer = email.NewSendgridSender(cfg.SendgridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	} else {
		mailer = &email.LogSender{Log: log}
	}

	var gateway payment.Gateway
	if cfg.PaymentGatewayURL != "" {
		gateway = payment.NewHTTPGateway(cfg.PaymentGatewayURL, cfg.PaymentGatewaySecret)
	} else {
		gateway = payment.NewMemoryGateway()
	}

	renderer, err := pdf.NewChromeRenderer()
	if err != nil {
		return api.Services{}, err
	}
	store, err := pdf.NewFileStore(cfg.PDFOutputDir)
	if err != nil {
		return api.Services{}, err
	}

	events := services.NewEventService(db)

	return api.Services{
		Auth:         services.NewAuthService(db, authenticator),
		Events:       events,
		Entitlements: services.NewEntitlementService(db),
		Clients:      services.NewClientService(db),
		Templates:    services.NewTemplateService(db),
		Signatures:   services.NewSignatureService(db, events),
		Payments:     services.NewPaymentService(db, gateway, events, log),
		Finalize:     services.NewFinalizeService(db, events, renderer, store, mailer, log),
		Contracts: services.NewContractService(db, events, mailer, log, services.ContractServiceConfig{
			BaseURL:         cfg.BaseURL,
			SigningTokenTTL: cfg.SigningTokenTTL,
		}),
	}, nil
}
