package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Postgres wraps DB connectivity to the managed database.
type Postgres struct {
	DB *gorm.DB
}

func Connect(dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolve postgres sql db handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{DB: db}, nil
}

// schemaGuards are idempotent constraints the application relies on. The
// tables themselves belong to the database provider.
var schemaGuards = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS votes_post_id_user_id_key ON votes (post_id, user_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS boards_public_link_key ON boards (public_link)`,
	`CREATE INDEX IF NOT EXISTS posts_board_id_created_at_idx ON posts (board_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS comments_post_id_created_at_idx ON comments (post_id, created_at)`,
}

// Migrate applies schema guards in a single transaction.
func (p *Postgres) Migrate(ctx context.Context) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schemaGuards {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("apply schema guard: %w", err)
			}
		}
		return nil
	})
}

func (p *Postgres) Close() error {
	if p == nil || p.DB == nil {
		return nil
	}
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
