package localstore

import (
	"context"
	"fmt"

	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/db"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/migrate"
	"github.com/angelmondragon/trio-pos/pkg/redis"
)

// Backend bundles the selected Store with the resources that must be closed on shutdown.
type Backend struct {
	Store  Store
	Pinger interface{ Ping(context.Context) error }
	close  func() error
}

// Close releases the backend connection, if any.
func (b *Backend) Close() error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the Store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Backend, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverSQLite:
		client, err := db.New(ctx, cfg.Store, logg)
		if err != nil {
			return nil, err
		}
		if err := migrate.MaybeRun(ctx, cfg.Store, logg, client); err != nil {
			_ = client.Close()
			return nil, err
		}
		return &Backend{Store: NewSQLStore(client.DB()), Pinger: client, close: client.Close}, nil
	case config.StoreDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: NewRedisStore(client, cfg.App.TerminalID), Pinger: client, close: client.Close}, nil
	case config.StoreDriverMemory:
		return &Backend{Store: NewMemoryStore()}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
