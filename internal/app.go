// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "bancore/internal/api"
	"bancore/internal/api/handler"
	"bancore/internal/audit"
	"bancore/internal/config"
	"bancore/internal/directory"
	"bancore/internal/domain"
	"bancore/internal/service"
	"bancore/internal/storage"
	"bancore/internal/util"
	"bancore/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB // nil unless the postgres backend is selected

	Directory *directory.Directory
	Store     storage.Store

	BankService service.BankService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Initialize the snapshot store
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		database, err := db.NewPostgresDB(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = database
		store, err := storage.NewPostgresStore(ctx, database)
		if err != nil {
			return fmt.Errorf("failed to initialize postgres store: %w", err)
		}
		app.Store = store
		app.Logger.Info("Postgres snapshot store initialized.")
	default:
		app.Store = storage.NewJSONStore(cfg.DataFile, app.Logger)
		app.Logger.Info("JSON snapshot store initialized.", "path", cfg.DataFile)
	}

	// 4. Load the last snapshot into the directory
	app.Directory = directory.New(cfg.BranchCode)
	snap, err := app.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	snap.Restore(app.Directory)
	app.Logger.Info("Directory restored from snapshot.",
		"users", len(app.Directory.Users()), "accounts", len(app.Directory.Accounts()))

	// 5. Initialize Services
	limits := domain.Limits{
		WithdrawalCeiling: cfg.WithdrawCeiling,
		DailyWithdrawals:  cfg.DailyWithdrawals,
	}
	recorder := audit.NewRecorder(app.Logger)
	app.BankService = service.NewBankService(app.Directory, app.Store, recorder, limits, nil)
	app.Logger.Info("Services initialized.")

	// 6. Initialize HTTP Handlers and Router
	bankHandler := handler.NewBankHandler(app.BankService, app.Logger)
	app.HTTPHandler = router.NewRouter(bankHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
