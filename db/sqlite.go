package db

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/marcus-crane/premiumize-addon/models"

	_ "modernc.org/sqlite"
)

const historyColumns = "id, created_at, request_id, requested_id, item_id, title, extension, size, url"

var _ Store = (*SqliteStore)(nil)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite only allows one writer so there's no point queueing up more connections
	db.SetMaxOpenConns(1)
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations fs.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func (s *SqliteStore) Insert(ctx context.Context, entry models.HistoryEntry) error {
	_, err := s.DB.NamedExecContext(ctx,
		"INSERT INTO stream_history ("+historyColumns+") VALUES (:id, :created_at, :request_id, :requested_id, :item_id, :title, :extension, :size, :url) ON CONFLICT (id) DO NOTHING",
		entry,
	)
	return err
}

func (s *SqliteStore) GetRecent(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	if err := s.DB.SelectContext(ctx, &entries, "SELECT "+historyColumns+" FROM stream_history ORDER BY created_at desc LIMIT ?", limit); err != nil {
		return entries, err
	}
	return entries, nil
}

func (s *SqliteStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM stream_history WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
