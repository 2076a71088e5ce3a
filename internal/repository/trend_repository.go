package repository

import (
	"context"
	"fmt"
	"time"

	"trendboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TrendStore persists scored posts and lists them newest first.
type TrendStore interface {
	InsertTrends(ctx context.Context, records []domain.SentimentRecord) (int, error)
	ListTrends(ctx context.Context, crypto string) ([]domain.SentimentRecord, error)
}

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TrendRepository is the Postgres TrendStore. The schema comes from the
// embedded migrations; see Migrator.
type TrendRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewTrendRepository(pool PgxPool, tracer trace.Tracer) *TrendRepository {
	return &TrendRepository{pool: pool, tracer: tracer}
}

const insertTrendPostgres = `
INSERT INTO trend_data (post_id, title, crypto, score, num_comments, created,
    sentiment_neg, sentiment_neu, sentiment_pos, sentiment_compound)
VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (post_id) DO NOTHING`

func (r *TrendRepository) InsertTrends(ctx context.Context, records []domain.SentimentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	ctx, span := r.tracer.Start(ctx, "trend-repo.insert-trends")
	defer span.End()
	span.SetAttributes(attribute.Int("trend.count", len(records)))

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(insertTrendPostgres,
			rec.PostID, rec.Title, rec.Crypto, rec.Score, rec.NumComments, rec.Created.UTC(),
			rec.SentimentNeg, rec.SentimentNeu, rec.SentimentPos, rec.SentimentCompound,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	inserted := 0
	for range records {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("insert trend: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *TrendRepository) ListTrends(ctx context.Context, crypto string) ([]domain.SentimentRecord, error) {
	ctx, span := r.tracer.Start(ctx, "trend-repo.list-trends")
	defer span.End()

	query := `SELECT id, COALESCE(post_id, ''), title, crypto, score, num_comments, created,
	     sentiment_neg, sentiment_neu, sentiment_pos, sentiment_compound
	 FROM trend_data`
	var args []any
	if crypto != "" {
		query += ` WHERE crypto = $1`
		args = append(args, crypto)
	}
	query += ` ORDER BY created DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SentimentRecord, 0)
	for rows.Next() {
		var rec domain.SentimentRecord
		var created time.Time
		if err := rows.Scan(&rec.ID, &rec.PostID, &rec.Title, &rec.Crypto, &rec.Score, &rec.NumComments, &created,
			&rec.SentimentNeg, &rec.SentimentNeu, &rec.SentimentPos, &rec.SentimentCompound); err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		rec.Created = created.UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}
