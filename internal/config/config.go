// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"bancore/pkg/db"
)

// Storage backends selectable via STORAGE_BACKEND.
const (
	BackendJSON     = "json"
	BackendPostgres = "postgres"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort     string
	StorageBackend string
	// DataFile is the snapshot path used by the JSON backend.
	DataFile   string
	BranchCode string
	// WithdrawCeiling caps a single withdrawal; DailyWithdrawals caps how
	// many withdrawals one account may make per calendar day.
	WithdrawCeiling  decimal.Decimal
	DailyWithdrawals int
	DB               db.Config
}

// LoadConfig loads configuration from environment variables.
// It returns an AppConfig instance or an error if any variable is invalid.
func LoadConfig() (*AppConfig, error) {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	backend := os.Getenv("STORAGE_BACKEND")
	if backend == "" {
		backend = BackendJSON
	}
	if backend != BackendJSON && backend != BackendPostgres {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q", backend)
	}

	dataFile := os.Getenv("DATA_FILE")
	if dataFile == "" {
		dataFile = "dados_bancarios.json"
	}

	branchCode := os.Getenv("BRANCH_CODE")
	if branchCode == "" {
		branchCode = "0001"
	}

	ceiling := decimal.NewFromInt(500)
	if v := os.Getenv("WITHDRAW_CEILING"); v != "" {
		parsed, err := decimal.NewFromString(v)
		if err != nil || parsed.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("invalid WITHDRAW_CEILING %q", v)
		}
		ceiling = parsed
	}

	dailyWithdrawals := 3
	if v := os.Getenv("WITHDRAW_DAILY_CAP"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("invalid WITHDRAW_DAILY_CAP %q", v)
		}
		dailyWithdrawals = parsed
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		dbPortStr = "5432"
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		dbPassword = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "bancodb"
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	return &AppConfig{
		ServerPort:       serverPort,
		StorageBackend:   backend,
		DataFile:         dataFile,
		BranchCode:       branchCode,
		WithdrawCeiling:  ceiling,
		DailyWithdrawals: dailyWithdrawals,
		DB: db.Config{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  dbSSLMode,
		},
	}, nil
}
