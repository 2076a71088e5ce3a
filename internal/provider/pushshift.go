package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const pushshiftBaseURL = "https://api.pushshift.io"

// PushshiftProvider searches the Pushshift submission archive for posts
// created inside a time window.
type PushshiftProvider struct {
	client     *http.Client
	baseURL    string
	userAgent  string
	tracer     trace.Tracer
	limiter    *RateLimiter
	retries    int
	retryDelay time.Duration
}

// NewPushshiftProvider allows one request per second. A non-200 answer is
// retried up to three times, five seconds apart. An empty baseURL selects
// the public API.
func NewPushshiftProvider(tracer trace.Tracer, baseURL string) *PushshiftProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = pushshiftBaseURL
	}
	return &PushshiftProvider{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  defaultRedditUA,
		tracer:     tracer,
		limiter:    NewRateLimiter(1, time.Second),
		retries:    3,
		retryDelay: 5 * time.Second,
	}
}

// FetchRange returns up to size posts created in [after, before), oldest
// first. When every attempt fails the last error is returned.
func (p *PushshiftProvider) FetchRange(ctx context.Context, subreddit string, after, before time.Time, size int) ([]RedditPost, error) {
	ctx, span := p.tracer.Start(ctx, "pushshift.fetch-range")
	defer span.End()

	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if size <= 0 || size > 100 {
		size = defaultRedditSize
	}
	span.SetAttributes(
		attribute.String("subreddit", subreddit),
		attribute.Int64("after", after.Unix()),
		attribute.Int64("before", before.Unix()),
	)

	q := url.Values{}
	q.Set("subreddit", subreddit)
	q.Set("after", fmt.Sprint(after.Unix()))
	q.Set("before", fmt.Sprint(before.Unix()))
	q.Set("size", fmt.Sprint(size))
	q.Set("sort", "asc")
	u := p.baseURL + "/reddit/search/submission/?" + q.Encode()

	var payload pushshiftResponse
	var err error
	for attempt := 1; attempt <= p.retries; attempt++ {
		if err = p.getJSON(ctx, u, &payload); err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("pushshift %s to %s: %v (attempt %d of %d)",
			after.UTC().Format(time.RFC3339), before.UTC().Format(time.RFC3339), err, attempt, p.retries)
		if attempt == p.retries {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}

	posts := make([]RedditPost, 0, len(payload.Data))
	for _, data := range payload.Data {
		if strings.TrimSpace(data.ID) == "" || strings.TrimSpace(data.Title) == "" {
			continue
		}
		posts = append(posts, RedditPost{
			ID:          data.ID,
			Subreddit:   strings.TrimSpace(data.Subreddit),
			Title:       sanitizeText(data.Title, 300),
			SelfText:    sanitizeText(data.SelfText, 2000),
			Author:      sanitizeText(data.Author, 120),
			URL:         strings.TrimSpace(data.URL),
			Score:       int(data.Score),
			NumComments: int(data.NumComments),
			CreatedUTC:  time.Unix(int64(data.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}

type pushshiftResponse struct {
	Data []struct {
		ID          string  `json:"id"`
		Subreddit   string  `json:"subreddit"`
		Title       string  `json:"title"`
		SelfText    string  `json:"selftext"`
		Author      string  `json:"author"`
		URL         string  `json:"url"`
		CreatedUTC  float64 `json:"created_utc"`
		Score       float64 `json:"score"`
		NumComments float64 `json:"num_comments"`
	} `json:"data"`
}

func (p *PushshiftProvider) getJSON(ctx context.Context, u string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("pushshift API error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode pushshift response: %w", err)
	}
	return nil
}
