package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/inklane/inklane/internal/api"
	"github.com/inklane/inklane/internal/config"
	"github.com/inklane/inklane/internal/database"
	"github.com/inklane/inklane/internal/logging"
	"github.com/inklane/inklane/internal/server"
	"github.com/inklane/inklane/internal/utils"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("inklane %s (commit %s, built %s)\n", Version, CommitHash, BuildTime)
		return
	}

	log := logging.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := database.NewDatabase(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authOpts := []utils.JwtAuthenticatorOption{}
	if cfg.JWKSURL != "" {
		authOpts = append(authOpts, utils.WithJWKS(ctx, cfg.JWKSURL))
	}
	authenticator := utils.NewJwtAuthenticator(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL, authOpts...)

	svc, err := server.InitializeServices(db.DB, cfg, authenticator, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize services")
	}

	apiServer := api.NewAPIServer(db, svc, authenticator, log, cfg.PaymentWebhookSecret)

	go func() {
		log.WithField("port", cfg.Port).Info("API server starting")
		if err := apiServer.Start(cfg.Port); err != nil {
			log.WithError(err).Fatal("failed to start API server")
		}
	}()

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Info("shutting down")
	if err := apiServer.Shutdown(); err != nil {
		log.WithError(err).Error("error shutting down API server")
	}
}
