package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/config"
	"github.com/testforge-ai/testforge-engine/pkg/crypto"
	"github.com/testforge-ai/testforge-engine/pkg/database"
	"github.com/testforge-ai/testforge-engine/pkg/handlers"
	"github.com/testforge-ai/testforge-engine/pkg/llm"
	"github.com/testforge-ai/testforge-engine/pkg/logging"
	"github.com/testforge-ai/testforge-engine/pkg/middleware"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
	"github.com/testforge-ai/testforge-engine/pkg/retry"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("ai_model", cfg.AI.Model))

	ctx := context.Background()

	// The database may still be starting when we are; retry the initial connect.
	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.URL(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	encryptor, err := crypto.NewSecretEncryptor(cfg.CredentialsKey)
	if err != nil {
		logger.Fatal("Failed to create secret encryptor", zap.Error(err))
	}

	llmClient, err := llm.NewClient(cfg.AI.Provider, &llm.Config{
		Endpoint: cfg.AI.BaseURL,
		Model:    cfg.AI.Model,
		APIKey:   cfg.AI.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	plans := services.NewPlanCatalog()
	if cfg.PlansFile != "" {
		plans, err = services.LoadPlanCatalog(cfg.PlansFile)
		if err != nil {
			logger.Fatal("Failed to load plan catalog", zap.Error(err))
		}
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	testCaseRepo := repositories.NewTestCaseRepository(db)
	executionRepo := repositories.NewExecutionRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	teamRepo := repositories.NewTeamRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)
	usageRepo := repositories.NewUsageRepository(db)

	// Services
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	accountService := services.NewAccountService(userRepo, tokens, logger)
	projectService := services.NewProjectService(projectRepo)
	testCaseService := services.NewTestCaseService(testCaseRepo)
	generationService := services.NewGenerationService(
		llmClient, testCaseRepo, usageRepo, userRepo, plans, cfg.AI.RequestTimeout(), logger)
	executionService := services.NewExecutionService(executionRepo, testCaseRepo, logger)
	analyticsService := services.NewAnalyticsService(executionRepo, testCaseRepo, usageRepo, userRepo, plans)
	reportService := services.NewReportService(reportRepo, executionRepo, testCaseRepo, logger)
	billingService := services.NewBillingService(userRepo, invoiceRepo, usageRepo, plans, logger)
	settingsService := services.NewSettingsService(settingsRepo, userRepo, encryptor, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, plans, logger)

	// Handlers
	authMiddleware := auth.NewMiddleware(tokens, logger)
	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(accountService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewProjectsHandler(projectService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTestCasesHandler(testCaseService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewGenerateHandler(generationService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewExecutionsHandler(executionService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewAnalyticsHandler(analyticsService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewReportsHandler(reportService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewBillingHandler(billingService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewSettingsHandler(settingsService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewTeamHandler(teamService, logger).RegisterRoutes(mux, authMiddleware)

	handler := middleware.Recovery(logger, cfg.IsProduction())(
		middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting testforge-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
