package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"trendboard/internal/service"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
)

// ErrCollectInProgress is returned by RunNow while another cycle is running.
var ErrCollectInProgress = errors.New("collection already in progress")

type TrendCollector interface {
	Collect(ctx context.Context) (service.CollectResult, error)
	Backfill(ctx context.Context, start, end time.Time) (service.BackfillResult, error)
}

// Collector runs the sentiment collection cycle on a cron schedule. At most
// one cycle runs at a time.
type Collector struct {
	tracer     trace.Tracer
	collector  TrendCollector
	spec       string
	runOnStart bool

	running sync.Mutex
	cron    *cron.Cron
}

func NewCollector(tracer trace.Tracer, collector TrendCollector, spec string, runOnStart bool) (*Collector, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse collect schedule %q: %w", spec, err)
	}
	return &Collector{
		tracer:     tracer,
		collector:  collector,
		spec:       spec,
		runOnStart: runOnStart,
		cron:       cron.New(),
	}, nil
}

// Start schedules the cycle and blocks until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	if _, err := c.cron.AddFunc(c.spec, func() { c.runScheduled(ctx) }); err != nil {
		log.Printf("collector schedule error: %v", err)
		return
	}
	c.cron.Start()
	log.Printf("Collector scheduled (%s)", c.spec)

	if c.runOnStart {
		go c.runScheduled(ctx)
	}

	<-ctx.Done()
	stopCtx := c.cron.Stop()
	<-stopCtx.Done()
	log.Println("Collector stopped")
}

func (c *Collector) runScheduled(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := c.RunNow(ctx); err != nil {
		if errors.Is(err, ErrCollectInProgress) {
			log.Println("collector: previous cycle still running, skipping")
			return
		}
		log.Printf("collector run error: %v", err)
	}
}

// RunNow runs one cycle synchronously.
func (c *Collector) RunNow(ctx context.Context) (service.CollectResult, error) {
	if !c.running.TryLock() {
		return service.CollectResult{}, ErrCollectInProgress
	}
	defer c.running.Unlock()

	ctx, span := c.tracer.Start(ctx, "collector.run")
	defer span.End()

	return c.collector.Collect(ctx)
}

// Backfill runs a historical backfill synchronously. It shares the
// single-cycle guard with RunNow.
func (c *Collector) Backfill(ctx context.Context, start, end time.Time) (service.BackfillResult, error) {
	if !c.running.TryLock() {
		return service.BackfillResult{}, ErrCollectInProgress
	}
	defer c.running.Unlock()

	ctx, span := c.tracer.Start(ctx, "collector.backfill")
	defer span.End()

	return c.collector.Backfill(ctx, start, end)
}
