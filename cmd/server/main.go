// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log" // Standard log for messages before zap is up or after it is synced
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"mailru_broker/internal/config"
)

func main() {
	pruneCmd := flag.NewFlagSet("prune-identities", flag.ExitOnError)
	retentionDays := pruneCmd.Int("retention-days", 0, "Override IDENTITY_RETENTION_DAYS for this run")

	if len(os.Args) > 1 && os.Args[1] == "prune-identities" {
		_ = pruneCmd.Parse(os.Args[2:])
		runPrune(*retentionDays)
		return
	}

	startServer()
}

// runPrune deletes stale federated users once and exits.
func runPrune(retentionDays int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	removed, err := pruneIdentities(context.Background(), cfg, retentionDays)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	log.Printf("INFO: Removed %d federated users not seen within %s", removed, cfg.IdentityRetention)
}

// pruneIdentities runs the identity prune job once. A positive retentionDays
// overrides IDENTITY_RETENTION_DAYS.
func pruneIdentities(ctx context.Context, cfg *config.Config, retentionDays int) (int64, error) {
	if retentionDays > 0 {
		cfg.IdentityRetention = config.Days(retentionDays)
	}
	if cfg.IdentityRetention <= 0 {
		return 0, errors.New("identity retention is disabled; set IDENTITY_RETENTION_DAYS or --retention-days")
	}

	job, cleanup, err := initializePruner(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize pruner: %w", err)
	}
	defer cleanup()

	return job.RunOnce(ctx), nil
}

func startServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	server, cleanup, err := initializeServer(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize server: %v", err)
	}
	defer cleanup()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Printf("INFO: Received signal '%s'. Shutting down server...", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ERROR: Server failed: %v", err)
			return
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: Server forced to shutdown due to error: %v", err)
	} else {
		log.Println("INFO: Server shutdown complete.")
	}
}
