// File: cmd/server/providers.go
package main

import (
	"log"
	"net/http"
	"time"

	"mailru_broker/internal/auth"
	"mailru_broker/internal/config"
	"mailru_broker/internal/mailru"
	"mailru_broker/internal/metrics"
	"mailru_broker/internal/platform/database"
	"mailru_broker/internal/platform/logger"
	"mailru_broker/internal/user"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return l, cleanup, nil
}

func provideDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, l)
	if err != nil {
		return nil, nil, err
	}
	if err := database.AutoMigrate(db, &user.FederatedUser{}); err != nil {
		database.CloseGORMDB(db, l)
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, l) }, nil
}

func provideFederationMetrics(cfg *config.Config, reg *prometheus.Registry) (*metrics.Federation, error) {
	return metrics.NewRegisteredFederation(cfg.MailRuAlias, reg)
}

func provideHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.MailRuHTTPTimeout}
}

func provideProviderConfig(cfg *config.Config) mailru.ProviderConfig {
	return mailru.NewProviderConfig(cfg.MailRuAlias, cfg.MailRuHostedDomain)
}

func provideProfileFetcher(cfg *config.Config, client *http.Client, rec *metrics.Federation, l *zap.Logger) *mailru.HTTPProfileFetcher {
	return mailru.NewHTTPProfileFetcher(client, l,
		mailru.WithRecorder(rec),
		mailru.WithSensitiveLogging(cfg.LogSensitiveValues),
	)
}

func provideProvider(pc mailru.ProviderConfig, fetcher *mailru.HTTPProfileFetcher, rec *metrics.Federation, l *zap.Logger) *mailru.Provider {
	return mailru.NewProvider(pc, fetcher, rec, l)
}

func provideBlocklist(cfg *config.Config) *auth.InMemoryBlocklistService {
	return auth.NewInMemoryBlocklistService(auth.InMemoryBlocklistConfig{
		DefaultExpiration: cfg.JWTRefreshTokenExpiryDays,
		CleanupInterval:   time.Hour,
	})
}

func provideStateStore(cfg *config.Config) *auth.StateStore {
	return auth.NewStateStore(cfg.OAuthStateTTL)
}
