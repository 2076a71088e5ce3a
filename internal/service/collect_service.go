package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"trendboard/internal/domain"
	"trendboard/internal/metrics"
	"trendboard/internal/provider"
	"trendboard/internal/sentiment"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PostSource interface {
	FetchNew(ctx context.Context, subreddit string, limit int) ([]provider.RedditPost, error)
	FetchTopComments(ctx context.Context, postID string, limit int) ([]string, error)
}

// ArchiveSource searches historical posts created in [after, before).
type ArchiveSource interface {
	FetchRange(ctx context.Context, subreddit string, after, before time.Time, size int) ([]provider.RedditPost, error)
}

type TrendWriter interface {
	InsertTrends(ctx context.Context, records []domain.SentimentRecord) (int, error)
}

type TitleScorer interface {
	Score(ctx context.Context, texts []string) []sentiment.Polarity
}

type CollectOptions struct {
	Subreddit    string
	Limit        int
	CommentLimit int
}

// CollectResult summarizes one collection cycle.
type CollectResult struct {
	Fetched  int            `json:"fetched"`
	Stored   int            `json:"stored"`
	ByCrypto map[string]int `json:"by_crypto"`
}

// BackfillResult summarizes a historical backfill over UTC day chunks.
type BackfillResult struct {
	CollectResult
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Chunks       int       `json:"chunks"`
	FailedChunks int       `json:"failed_chunks"`
}

// ErrArchiveUnavailable is returned by Backfill when no archive is configured.
var ErrArchiveUnavailable = errors.New("post archive unavailable")

// CollectService pulls the newest subreddit posts, attributes each to an
// asset, scores the title and stores the row.
type CollectService struct {
	tracer   trace.Tracer
	posts    PostSource
	detector *sentiment.Detector
	scorer   TitleScorer
	store    TrendWriter
	archive  ArchiveSource
	opts     CollectOptions
}

func NewCollectService(
	tracer trace.Tracer,
	posts PostSource,
	detector *sentiment.Detector,
	scorer TitleScorer,
	store TrendWriter,
	opts CollectOptions,
) *CollectService {
	if opts.Subreddit == "" {
		opts.Subreddit = "CryptoCurrency"
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	if opts.CommentLimit <= 0 {
		opts.CommentLimit = 5
	}
	return &CollectService{
		tracer:   tracer,
		posts:    posts,
		detector: detector,
		scorer:   scorer,
		store:    store,
		opts:     opts,
	}
}

func (s *CollectService) Collect(ctx context.Context) (result CollectResult, err error) {
	ctx, span := s.tracer.Start(ctx, "collect-service.collect")
	defer span.End()
	defer func() { metrics.RecordCollectorRun(result.ByCrypto, err) }()

	result.ByCrypto = make(map[string]int)

	posts, err := s.posts.FetchNew(ctx, s.opts.Subreddit, s.opts.Limit)
	if err != nil {
		return result, fmt.Errorf("fetch r/%s: %w", s.opts.Subreddit, err)
	}
	result.Fetched = len(posts)
	span.SetAttributes(attribute.Int("posts.fetched", len(posts)))
	if len(posts) == 0 {
		return result, nil
	}

	stored, err := s.ingest(ctx, posts, result.ByCrypto)
	if err != nil {
		return result, err
	}
	result.Stored = stored

	log.Printf("Collected %d posts from r/%s (%d new)", result.Fetched, s.opts.Subreddit, stored)
	return result, nil
}

// SetArchive enables Backfill.
func (s *CollectService) SetArchive(archive ArchiveSource) {
	s.archive = archive
}

// Backfill walks [start, end) in UTC calendar-day chunks through the archive
// and stores what each chunk returns. The first and last chunks are clipped
// to the range. A chunk that still fails after the archive's retries is
// logged and skipped.
func (s *CollectService) Backfill(ctx context.Context, start, end time.Time) (result BackfillResult, err error) {
	ctx, span := s.tracer.Start(ctx, "collect-service.backfill")
	defer span.End()
	defer func() { metrics.RecordCollectorRun(result.ByCrypto, err) }()

	start, end = start.UTC(), end.UTC()
	result.Start, result.End = start, end
	result.ByCrypto = make(map[string]int)
	if s.archive == nil {
		return result, ErrArchiveUnavailable
	}
	if start.After(end) {
		return result, fmt.Errorf("backfill start %s is after end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	for _, chunk := range DayChunks(start, end) {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Chunks++
		posts, err := s.archive.FetchRange(ctx, s.opts.Subreddit, chunk.Start, chunk.End, s.opts.Limit)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.FailedChunks++
			log.Printf("backfill %s: %v", domain.FormatDay(chunk.Start), err)
			continue
		}
		result.Fetched += len(posts)
		if len(posts) == 0 {
			log.Printf("backfill %s: no posts", domain.FormatDay(chunk.Start))
			continue
		}
		stored, err := s.ingest(ctx, posts, result.ByCrypto)
		if err != nil {
			return result, err
		}
		result.Stored += stored
	}
	span.SetAttributes(attribute.Int("backfill.chunks", result.Chunks), attribute.Int("posts.fetched", result.Fetched))

	log.Printf("Backfilled r/%s %s to %s: %d chunks (%d failed), %d posts (%d new)",
		s.opts.Subreddit, start.Format(time.RFC3339), end.Format(time.RFC3339),
		result.Chunks, result.FailedChunks, result.Fetched, result.Stored)
	return result, nil
}

// DayChunks splits [start, end) at every UTC midnight. An empty range has
// no chunks.
func DayChunks(start, end time.Time) []domain.DateRange {
	var out []domain.DateRange
	for after := start.UTC(); after.Before(end); {
		before := after.Truncate(24 * time.Hour).Add(24 * time.Hour)
		if before.After(end) {
			before = end.UTC()
		}
		out = append(out, domain.DateRange{Start: after, End: before})
		after = before
	}
	return out
}

// ingest attributes, scores and stores posts, counting stored rows per
// asset into byCrypto.
func (s *CollectService) ingest(ctx context.Context, posts []provider.RedditPost, byCrypto map[string]int) (int, error) {
	titles := make([]string, len(posts))
	records := make([]domain.SentimentRecord, len(posts))
	for i, post := range posts {
		titles[i] = post.Title
		records[i] = domain.SentimentRecord{
			PostID:      post.ID,
			Title:       post.Title,
			Crypto:      s.detectAsset(ctx, post),
			Score:       post.Score,
			NumComments: post.NumComments,
			Created:     post.CreatedUTC.UTC(),
		}
	}

	for i, p := range s.scorer.Score(ctx, titles) {
		records[i].SentimentNeg = p.Neg
		records[i].SentimentNeu = p.Neu
		records[i].SentimentPos = p.Pos
		records[i].SentimentCompound = p.Compound
	}

	stored, err := s.store.InsertTrends(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("store trends: %w", err)
	}
	for _, r := range records {
		byCrypto[r.Crypto]++
	}
	return stored, nil
}

func (s *CollectService) detectAsset(ctx context.Context, post provider.RedditPost) string {
	if asset, ok := s.detector.Detect(post.Title + " " + post.SelfText); ok {
		return asset
	}
	if strings.TrimSpace(post.ID) == "" {
		return domain.UnknownAsset
	}
	comments, err := s.posts.FetchTopComments(ctx, post.ID, s.opts.CommentLimit)
	if err != nil {
		log.Printf("fetch comments for post %s: %v", post.ID, err)
		return domain.UnknownAsset
	}
	return s.detector.DetectPost("", "", comments)
}
