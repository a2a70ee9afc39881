package app

import (
	"fmt"
	"log/slog"

	"github.com/breachboard/breachboard/internal/config"
	"github.com/breachboard/breachboard/internal/db"
	"github.com/breachboard/breachboard/internal/repository"
	"github.com/breachboard/breachboard/internal/service"
	"github.com/breachboard/breachboard/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	UserRepository   repository.UserRepository
	AuthService      *service.AuthService
	DashboardService *service.DashboardService
	BackupService    *service.BackupService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)

	// Offsite snapshot storage (optional)
	var snapshots storage.Storage
	if cfg.SnapshotsEnabled() {
		snapshots, err = storage.NewS3Storage(storage.S3Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize snapshot storage: %v", err)
		}
	} else {
		slog.Info("offsite backup snapshots disabled, S3_BUCKET not set")
	}

	// Services
	breachClient := service.NewBreachClient(cfg.BreachAPIURL, cfg.PwnedRangeURL, cfg.HIBPAPIKey, cfg.AppName, cfg.LookupTimeout)
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.IsProduction(), cfg.JWTExpiry)
	dashboardService := service.NewDashboardService(userRepository, breachClient)
	backupService := service.NewBackupService(userRepository, snapshots)

	return &App{
		Cfg:              cfg,
		DB:               database,
		UserRepository:   userRepository,
		AuthService:      authService,
		DashboardService: dashboardService,
		BackupService:    backupService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
