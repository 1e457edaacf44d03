package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/upadhyai/backend/repository"
	"github.com/upadhyai/backend/services"
	"github.com/upadhyai/backend/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Setup structured logging with JSON format
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	config := services.LoadConfig()

	if config.Database.URL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if config.JWT.Secret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{
		Logger: gormLogger(config.Database.LogLevel),
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to database")

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database pool", "error", err)
		os.Exit(1)
	}
	sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	repo := repository.NewGORMRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed")

	if config.Database.Seed {
		seeder := services.NewDatabaseSeeder(repo, config)
		if err := seeder.SeedDatabase(); err != nil {
			slog.Error("Failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	server := services.NewServer(config)
	server.SetDatabase(repo)

	if config.Storage.Endpoint != "" {
		store, err := storage.NewClient(context.Background(), storage.Config{
			Endpoint:   config.Storage.Endpoint,
			AccessKey:  config.Storage.AccessKey,
			SecretKey:  config.Storage.SecretKey,
			Bucket:     config.Storage.Bucket,
			Region:     config.Storage.Region,
			DisableTLS: config.Storage.DisableTLS,
		})
		if err != nil {
			slog.Error("Failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		server.SetStorage(store)
		slog.Info("Object storage initialized", "bucket", config.Storage.Bucket)
	} else {
		slog.Warn("Object storage not configured, resume uploads disabled")
	}

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	server.Start()
}

func gormLogger(level string) logger.Interface {
	switch level {
	case "info":
		return logger.Default.LogMode(logger.Info)
	case "warn":
		return logger.Default.LogMode(logger.Warn)
	case "silent":
		return logger.Default.LogMode(logger.Silent)
	default:
		return logger.Default.LogMode(logger.Error)
	}
}
