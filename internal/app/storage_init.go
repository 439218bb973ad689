package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shiptrack/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/shiptrack/internal/health"
	"github.com/vladislavdragonenkov/shiptrack/internal/storage/memory"
	"github.com/vladislavdragonenkov/shiptrack/internal/storage/postgres"
)

// initStorage выбирает хранилище посылок по конфигурации.
// Для postgres возвращает также открытый Store: его закрывает вызывающий.
func initStorage(ctx context.Context, cfg Config, healthHandler *healthcheck.Handler, logger *log.Entry) (domain.ShipmentRepository, *postgres.Store, error) {
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("postgres storage requires SHIPTRACK_POSTGRES_DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("ensure schema: %w", err)
			}
		}
		if healthHandler != nil {
			healthHandler.RegisterChecker("postgres", healthcheck.NewPingChecker("postgres", store))
		}
		logger.Info("хранилище postgres инициализировано")
		return postgres.NewShipmentRepository(store), store, nil
	case StorageDriverMemory, "":
		logger.Info("хранилище in-memory инициализировано")
		return memory.NewShipmentRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
