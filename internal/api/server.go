package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/inklane/inklane/internal/api/middleware"
	"github.com/inklane/inklane/internal/database"
	"github.com/inklane/inklane/internal/services"
	"github.com/inklane/inklane/internal/utils"
	"github.com/sirupsen/logrus"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Auth         services.AuthService
	Contracts    services.ContractService
	Signatures   services.SignatureService
	Finalize     services.FinalizeService
	Payments     services.PaymentService
	Clients      services.ClientService
	Templates    services.TemplateService
	Events       services.EventService
	Entitlements services.EntitlementService
}

type APIServer struct {
	app           *fiber.App
	db            *database.Database
	svc           Services
	authenticator *utils.JwtAuthenticator
	validate      *validator.Validate
	log           *logrus.Logger
	webhookSecret string
	port          int
}

func NewAPIServer(db *database.Database, svc Services, authenticator *utils.JwtAuthenticator, log *logrus.Logger, webhookSecret string) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:           app,
		db:            db,
		svc:           svc,
		authenticator: authenticator,
		validate:      validator.New(),
		log:           log,
		webhookSecret: webhookSecret,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Public signing surface; access is gated by the signing token itself.
	s.app.Get("/sign/:token", s.handleSignView)
	s.app.Post("/sign/:token/password", s.handleSignPassword)
	s.app.Post("/sign/:token/signatures", s.handleClientSign)
	s.app.Post("/sign/:token/payment-intent", s.handleDepositIntent)
	s.app.Post("/sign/:token/payment-method", s.handleSavePaymentMethod)
	s.app.Post("/sign/:token/finalize", s.handleFinalize)

	// Payment gateway confirmations
	s.app.Post("/webhooks/payment", s.handlePaymentWebhook)

	// Session management
	s.app.Post("/api/auth/register", s.handleRegister)
	s.app.Post("/api/auth/login", s.handleLogin)

	// Authenticated contractor API
	authed := s.app.Group("/api", middleware.AuthMiddleware(middleware.AuthConfig{
		JWTAuthenticator: s.authenticator,
	}))

	authed.Post("/clients", s.handleCreateClient)
	authed.Get("/clients", s.handleListClients)
	authed.Get("/clients/:id", s.handleGetClient)
	authed.Put("/clients/:id", s.handleUpdateClient)
	authed.Delete("/clients/:id", s.handleDeleteClient)

	authed.Post("/templates", s.handleCreateTemplate)
	authed.Get("/templates", s.handleListTemplates)
	authed.Get("/templates/:id", s.handleGetTemplate)
	authed.Put("/templates/:id", s.handleUpdateTemplate)
	authed.Delete("/templates/:id", s.handleDeleteTemplate)

	authed.Post("/contracts", s.handleCreateContract)
	authed.Get("/contracts", s.handleListContracts)
	authed.Get("/contracts/:id", s.handleGetContract)
	authed.Put("/contracts/:id", s.handleUpdateContract)
	authed.Post("/contracts/:id/send", s.handleSendContract)
	authed.Post("/contracts/:id/cancel", s.handleCancelContract)
	authed.Post("/contracts/:id/sign", s.handleContractorSign)
	authed.Put("/contracts/:id/password", s.handleSetContractPassword)
	authed.Delete("/contracts/:id/password", s.handleClearContractPassword)
	authed.Get("/contracts/:id/events", s.handleListContractEvents)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the configured port.
func (s *APIServer) Start(port int) error {
	s.port = port
	return s.app.Listen(fmt.Sprintf(":%d", port))
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the underlying Fiber app for tests.
func (s *APIServer) App() *fiber.App {
	return s.app
}
