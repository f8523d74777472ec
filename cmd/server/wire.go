// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"mailru_broker/internal/app"
	"mailru_broker/internal/auth"
	"mailru_broker/internal/config"
	"mailru_broker/internal/jobs"
	"mailru_broker/internal/metrics"
	"mailru_broker/internal/shared"
	"mailru_broker/internal/user"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		provideLogger,
		provideDatabase,
		metrics.NewRegistry,
		provideFederationMetrics,
		provideHTTPClient,

		// Mail.ru provider
		provideProviderConfig,
		provideProfileFetcher,
		provideProvider,

		// Users
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
		wire.Bind(new(jobs.IdentityPruner), new(*user.ServiceImplementation)),

		// Tokens and login
		auth.NewJWTService,
		wire.Bind(new(shared.TokenService), new(*auth.JWTService)),
		provideBlocklist,
		wire.Bind(new(auth.TokenBlocklistService), new(*auth.InMemoryBlocklistService)),
		provideStateStore,
		auth.NewOAuthService,
		auth.NewHandler,

		jobs.NewIdentityPruneJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

// initializePruner builds only what the prune-identities command needs.
func initializePruner(cfg *config.Config) (*jobs.IdentityPruneJob, func(), error) {
	wire.Build(
		provideLogger,
		provideDatabase,
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(jobs.IdentityPruner), new(*user.ServiceImplementation)),
		jobs.NewIdentityPruneJob,
	)
	return nil, nil, nil
}
