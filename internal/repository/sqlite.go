package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"

	"trendboard/internal/domain"

	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

// SQLiteTrendStore keeps trend rows in a local SQLite file with created
// stored as UTC text in domain.StoredTimeLayout.
type SQLiteTrendStore struct {
	db     *sql.DB
	mu     sync.Mutex
	tracer trace.Tracer
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
func OpenSQLite(path string, tracer trace.Tracer) (*SQLiteTrendStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteTrendStore{db: db, tracer: tracer}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("sqlite trend store opened: %s", path)
	return s, nil
}

func (s *SQLiteTrendStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trend_data (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			post_id            TEXT UNIQUE,
			title              TEXT NOT NULL,
			crypto             TEXT NOT NULL,
			score              INTEGER NOT NULL DEFAULT 0,
			num_comments       INTEGER NOT NULL DEFAULT 0,
			created            TEXT NOT NULL,
			sentiment_neg      REAL NOT NULL DEFAULT 0,
			sentiment_neu      REAL NOT NULL DEFAULT 0,
			sentiment_pos      REAL NOT NULL DEFAULT 0,
			sentiment_compound REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trend_data_crypto_created ON trend_data(crypto, created)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteTrendStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteTrendStore) InsertTrends(ctx context.Context, records []domain.SentimentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctx, span := s.tracer.Start(ctx, "sqlite-trend-store.insert-trends")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO trend_data
		(post_id, title, crypto, score, num_comments, created,
		 sentiment_neg, sentiment_neu, sentiment_pos, sentiment_compound)
		VALUES (NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range records {
		res, err := stmt.ExecContext(ctx,
			rec.PostID, rec.Title, rec.Crypto, rec.Score, rec.NumComments,
			rec.Created.UTC().Format(domain.StoredTimeLayout),
			rec.SentimentNeg, rec.SentimentNeu, rec.SentimentPos, rec.SentimentCompound,
		)
		if err != nil {
			return 0, fmt.Errorf("insert trend: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (s *SQLiteTrendStore) ListTrends(ctx context.Context, crypto string) ([]domain.SentimentRecord, error) {
	ctx, span := s.tracer.Start(ctx, "sqlite-trend-store.list-trends")
	defer span.End()

	query := `SELECT id, COALESCE(post_id, ''), title, crypto, score, num_comments, created,
		sentiment_neg, sentiment_neu, sentiment_pos, sentiment_compound
		FROM trend_data`
	var args []any
	if crypto != "" {
		query += ` WHERE crypto = ?`
		args = append(args, crypto)
	}
	query += ` ORDER BY created DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SentimentRecord, 0)
	for rows.Next() {
		var rec domain.SentimentRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.PostID, &rec.Title, &rec.Crypto, &rec.Score, &rec.NumComments, &created,
			&rec.SentimentNeg, &rec.SentimentNeu, &rec.SentimentPos, &rec.SentimentCompound); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		if rec.Created, err = domain.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("trend %d: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
