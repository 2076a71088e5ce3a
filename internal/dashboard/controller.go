// Package dashboard holds the selection state behind the dashboard views and
// merges fetched series into a chart.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"trendboard/internal/domain"
	"trendboard/internal/metrics"
)

var (
	ErrInvertedRange = errors.New("range start is after range end")
	ErrClosed        = errors.New("dashboard controller is closed")
)

// SeriesFetcher returns the daily sentiment and price series for a selection.
// Failures are reported as empty series.
type SeriesFetcher interface {
	DailySeries(ctx context.Context, asset domain.Asset, start, end time.Time) (sentiment, prices domain.DailySeries)
}

type State struct {
	Asset      domain.Asset       `json:"asset"`
	Start      time.Time          `json:"start"`
	End        time.Time          `json:"end"`
	Sentiment  domain.DailySeries `json:"sentiment"`
	Prices     domain.DailySeries `json:"prices"`
	Loading    bool               `json:"loading"`
	Generation uint64             `json:"generation"`
}

type Snapshot struct {
	State
	Chart Chart `json:"chart"`
}

// Controller owns the current selection. Every change starts a new fetch
// generation; results from an older generation are discarded.
type Controller struct {
	fetcher SeriesFetcher
	base    context.Context

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	subs   map[chan struct{}]struct{}
	closed bool
	wg     sync.WaitGroup
}

func NewController(ctx context.Context, fetcher SeriesFetcher, asset domain.Asset, rng domain.DateRange) *Controller {
	return &Controller{
		fetcher: fetcher,
		base:    ctx,
		state: State{
			Asset:     asset,
			Start:     rng.Start,
			End:       rng.End,
			Sentiment: domain.DailySeries{},
			Prices:    domain.DailySeries{},
		},
		subs: make(map[chan struct{}]struct{}),
	}
}

func (c *Controller) SetAsset(asset domain.Asset) (uint64, error) {
	if !asset.IsValid() {
		return 0, domain.ErrUnsupportedAsset
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state.Generation, ErrClosed
	}
	c.state.Asset = asset
	return c.startLocked(), nil
}

func (c *Controller) SetRange(start, end time.Time) (uint64, error) {
	if start.After(end) {
		return 0, ErrInvertedRange
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state.Generation, ErrClosed
	}
	c.state.Start = start
	c.state.End = end
	return c.startLocked(), nil
}

// Refresh re-fetches the current selection. After Close it returns the
// current generation without fetching.
func (c *Controller) Refresh() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

func (c *Controller) startLocked() uint64 {
	if c.closed {
		return c.state.Generation
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.state.Generation++
	c.state.Loading = true
	gen := c.state.Generation
	asset, start, end := c.state.Asset, c.state.Start, c.state.End

	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		sentiment, prices := c.fetcher.DailySeries(ctx, asset, start, end)
		c.apply(gen, sentiment, prices)
	}()
	return gen
}

func (c *Controller) apply(gen uint64, sentiment, prices domain.DailySeries) {
	c.mu.Lock()
	if gen != c.state.Generation {
		c.mu.Unlock()
		metrics.RecordStaleResponse()
		return
	}
	if sentiment == nil {
		sentiment = domain.DailySeries{}
	}
	if prices == nil {
		prices = domain.DailySeries{}
	}
	c.state.Sentiment = sentiment
	c.state.Prices = prices
	c.state.Loading = false
	c.cancel = nil
	subs := make([]chan struct{}, 0, len(c.subs))
	for ch := range c.subs {
		subs = append(subs, ch)
	}
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	st := c.state
	st.Sentiment = append(domain.DailySeries{}, c.state.Sentiment...)
	st.Prices = append(domain.DailySeries{}, c.state.Prices...)
	c.mu.Unlock()
	return Snapshot{State: st, Chart: Merge(st.Sentiment, st.Prices)}
}

// Subscribe returns a channel that receives a signal after each applied
// result. Signals coalesce when the reader falls behind.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
		})
	}
}

// Wait blocks until every started fetch has returned.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels the in-flight fetch and waits for it to finish. No fetch
// starts after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
}
