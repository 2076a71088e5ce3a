package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	redditBaseURL     = "https://www.reddit.com"
	defaultRedditUA   = "trendboard/1.0 (crypto sentiment dashboard)"
	defaultRedditSize = 100
)

// RedditPost is a listing entry from a subreddit.
type RedditPost struct {
	ID          string
	Subreddit   string
	Title       string
	SelfText    string
	Author      string
	URL         string
	Score       int
	NumComments int
	CreatedUTC  time.Time
}

type RedditProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	limiter   *RateLimiter
}

func NewRedditProvider(tracer trace.Tracer) *RedditProvider {
	return &RedditProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: defaultRedditUA,
		tracer:    tracer,
		limiter:   NewRateLimiter(10, 6*time.Second),
	}
}

// FetchNew returns the newest posts of a subreddit (limit capped at 100).
func (p *RedditProvider) FetchNew(ctx context.Context, subreddit string, limit int) ([]RedditPost, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.fetch-new")
	defer span.End()

	subreddit = strings.TrimSpace(subreddit)
	if subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	if limit <= 0 || limit > 100 {
		limit = defaultRedditSize
	}
	span.SetAttributes(attribute.String("subreddit", subreddit), attribute.Int("limit", limit))

	base := strings.TrimRight(p.baseURL, "/")
	u := fmt.Sprintf("%s/r/%s/new.json?limit=%d", base, url.PathEscape(subreddit), limit)

	var payload redditListing
	if err := p.getJSON(ctx, u, &payload); err != nil {
		return nil, err
	}

	posts := make([]RedditPost, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		if strings.TrimSpace(data.ID) == "" || strings.TrimSpace(data.Title) == "" {
			continue
		}
		postURL := strings.TrimSpace(data.URL)
		if permalink := strings.TrimSpace(data.Permalink); permalink != "" {
			postURL = base + permalink
		}
		posts = append(posts, RedditPost{
			ID:          data.ID,
			Subreddit:   strings.TrimSpace(data.Subreddit),
			Title:       sanitizeText(data.Title, 300),
			SelfText:    sanitizeText(data.SelfText, 2000),
			Author:      sanitizeText(data.Author, 120),
			URL:         postURL,
			Score:       int(data.Score),
			NumComments: int(data.NumComments),
			CreatedUTC:  time.Unix(int64(data.CreatedUTC), 0).UTC(),
		})
	}
	return posts, nil
}

// FetchTopComments returns the bodies of up to limit top-level comments of a post.
func (p *RedditProvider) FetchTopComments(ctx context.Context, postID string, limit int) ([]string, error) {
	ctx, span := p.tracer.Start(ctx, "reddit.fetch-top-comments")
	defer span.End()

	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, fmt.Errorf("post id is required")
	}
	if limit <= 0 {
		limit = 5
	}

	base := strings.TrimRight(p.baseURL, "/")
	u := fmt.Sprintf("%s/comments/%s.json?limit=%d&sort=top", base, url.PathEscape(postID), limit)

	// The response is [post listing, comment listing].
	var listings []redditListing
	if err := p.getJSON(ctx, u, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, nil
	}

	bodies := make([]string, 0, limit)
	for _, row := range listings[1].Data.Children {
		if row.Kind != "t1" {
			continue
		}
		body := sanitizeText(row.Data.Body, 1000)
		if body == "" {
			continue
		}
		bodies = append(bodies, body)
		if len(bodies) == limit {
			break
		}
	}
	return bodies, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data struct {
				ID          string  `json:"id"`
				Subreddit   string  `json:"subreddit"`
				Title       string  `json:"title"`
				SelfText    string  `json:"selftext"`
				Body        string  `json:"body"`
				Author      string  `json:"author"`
				CreatedUTC  float64 `json:"created_utc"`
				Permalink   string  `json:"permalink"`
				URL         string  `json:"url"`
				Score       float64 `json:"score"`
				NumComments float64 `json:"num_comments"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (p *RedditProvider) getJSON(ctx context.Context, u string, out any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("reddit API error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode reddit response: %w", err)
	}
	return nil
}

func sanitizeText(in string, maxLen int) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	in = strings.ReplaceAll(in, "\n", " ")
	in = strings.ReplaceAll(in, "\r", " ")
	in = strings.Join(strings.Fields(in), " ")
	if maxLen > 0 && len(in) > maxLen {
		in = in[:maxLen]
	}
	return in
}
