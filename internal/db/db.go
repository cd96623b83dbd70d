package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rajatpathak/BidFlowAI-sub003/internal/router/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitDb инициализирует подключение к базе данных и возвращает пул соединений.
func InitDb(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresConn == "" {
		return nil, fmt.Errorf("POSTGRES_CONN is not set")
	}

	dbPool, err := pgxpool.New(ctx, cfg.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(pingCtx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}

	return dbPool, nil
}
