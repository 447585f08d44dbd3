package store

import (
	"context"
	"fmt"

	"userdesk/internal/config"
	"userdesk/internal/infra/document/file"
	"userdesk/internal/infra/document/memory"
	"userdesk/internal/infra/document/postgres"
	"userdesk/internal/infra/document/s3"
	"userdesk/internal/infra/document/sqlite"
)

// Open selects a backend from configuration. The file driver is the default.
func Open(ctx context.Context, cfg config.Store) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(DriverFile)
	}
	var (
		backend Store
		err     error
	)
	switch Driver(driver) {
	case DriverFile:
		backend, err = file.New(cfg.FilePath)
	case DriverMemory:
		backend = memory.New()
	case DriverSQLite:
		backend, err = sqlite.New(cfg.SQLitePath)
	case DriverPostgres:
		backend, err = postgres.New(ctx, cfg.PostgresDSN)
	case DriverS3:
		backend, err = s3.New(ctx, s3.Config{
			Bucket:          cfg.S3Bucket,
			Key:             cfg.S3Key,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	return Guard(backend), nil
}

// NewMemory returns a guarded in-memory store for tests and demos.
func NewMemory() Store {
	return Guard(memory.New())
}
