/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the library lending server: configuration,
  storage, lending policy, HTTP router, graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env/environment configuration (flags override)
  2. Open SQLite store and migrate schema
  3. Load lending policy (POLICY_PATH JSON, else defaults)
  4. Wire engine + services into the API handler
  5. Start server, shut down gracefully on SIGINT/SIGTERM

EXAMPLES:
  # Run with file database
  ./server -db=./data/library.db

  # Run with in-memory database on another port
  ./server -db=:memory: -port=3000

SEE ALSO:
  - configs/config.go: environment settings
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/library-engine/api"
	"github.com/warp/library-engine/catalog"
	"github.com/warp/library-engine/configs"
	"github.com/warp/library-engine/factory"
	"github.com/warp/library-engine/lending"
	"github.com/warp/library-engine/members"
	"github.com/warp/library-engine/store/sqlite"
)

func main() {
	cfg := configs.Load()

	// Flags override the environment.
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (\":memory:\" for in-memory)")
	policyPath := flag.String("policy", cfg.PolicyPath, "lending policy JSON file (optional)")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Lending policy
	policy := lending.DefaultPolicy()
	if *policyPath != "" {
		policy, err = factory.LoadPolicyFile(*policyPath)
		if err != nil {
			slog.Error("failed to load lending policy", "path", *policyPath, "error", err)
			os.Exit(1)
		}
		slog.Info("lending policy loaded", "path", *policyPath)
	}

	// Wire services
	engine := lending.NewEngine(store, policy)
	catalogSvc := catalog.NewService(store, store)
	inventory := catalog.NewInventory(store)
	users := members.NewService(store)

	handler := api.NewHandler(engine, catalogSvc, inventory, users)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
