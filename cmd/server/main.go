/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the salary engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Build the zap logger
  3. Load the salary rules (defaults, or a JSON/YAML rules file)
  4. Initialize SQLite store
  5. Create engine, pay run runner and API handler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port     HTTP server port (default: 8080)
  -db       SQLite database path (default: salary.db)
            Use ":memory:" for in-memory database
  -rules    Rules file (.json, .yaml, .yml); built-in defaults when empty
  -workers  Pay run worker count (default: 4)
  -env      "development" or "production" (selects the log format)

ENVIRONMENT:
  Flags fall back to these variables when not given on the command line:
  PORT, DATABASE_PATH, RULES_FILE, PAYRUN_WORKERS, APP_ENV

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database and a state rules file
  ./server -db="./data/salary.db" -rules="./rules/maharashtra.yaml"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - factory/rules.go: Rules file format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/warp/salary-engine/api"
	"github.com/warp/salary-engine/factory"
	"github.com/warp/salary-engine/payrun"
	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	// Flags
	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envString("DATABASE_PATH", "salary.db"), "SQLite database path")
	rulesPath := flag.String("rules", envString("RULES_FILE", ""), "Salary rules file (.json, .yaml)")
	workers := flag.Int("workers", envInt("PAYRUN_WORKERS", payrun.DefaultWorkers), "Pay run worker count")
	env := flag.String("env", envString("APP_ENV", "development"), "Environment (development, production)")
	flag.Parse()

	logger, err := newLogger(*env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Rules
	rules := salary.DefaultRules()
	if *rulesPath != "" {
		rules, err = factory.NewRulesFactory().LoadFile(*rulesPath)
		if err != nil {
			logger.Fatal("failed to load salary rules", zap.String("path", *rulesPath), zap.Error(err))
		}
		logger.Info("salary rules loaded", zap.String("path", *rulesPath))
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.String("path", *dbPath), zap.Error(err))
	}
	defer store.Close()

	engine := salary.NewEngine(rules)
	runner := payrun.NewRunner(engine, *workers, logger)
	handler := api.NewHandler(store, engine, runner, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", *port),
			zap.String("db", *dbPath),
			zap.Int("workers", runner.Workers),
			zap.String("env", *env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
