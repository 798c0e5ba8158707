package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/realestate-cinematic/cinematic-backend/config"
	"github.com/realestate-cinematic/cinematic-backend/internal/storage/docstore"
)

type StoreOptions struct {
	URL       string
	Name      string
	ConnectTO time.Duration
	PingTO    time.Duration
}

// OpenStore connects the document store named by opt.URL. It returns a nil
// Store and no error when no URL is configured.
func OpenStore(ctx context.Context, opt StoreOptions, logger *zap.Logger) (docstore.Store, error) {
	if opt.URL == "" {
		logger.Warn("DATABASE_URL is not set, project routes are disabled")
		return nil, nil
	}
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	scheme, err := config.StoreConfig{URL: opt.URL}.Scheme()
	if err != nil {
		return nil, err
	}

	var store docstore.Store
	switch scheme {
	case config.SchemeRedis:
		store, err = openRedis(opt)
	case config.SchemePostgres:
		store, err = openPostgres(ctx, opt)
	}
	if err != nil {
		return nil, err
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTO)
	defer pcancel()

	if err := store.Ping(pctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}

	logger.Info("document store connected",
		zap.String("backend", scheme),
		zap.String("database", store.Name()),
	)
	return store, nil
}

func openRedis(opt StoreOptions) (docstore.Store, error) {
	ropts, err := redis.ParseURL(opt.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	ropts.DialTimeout = opt.ConnectTO
	return docstore.NewRedisStore(redis.NewClient(ropts), opt.Name), nil
}

func openPostgres(ctx context.Context, opt StoreOptions) (docstore.Store, error) {
	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	pool, err := pgxpool.New(cctx, opt.URL)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	store := docstore.NewPostgresStore(pool)
	if err := store.EnsureSchema(cctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db schema: %w", err)
	}
	return store, nil
}
