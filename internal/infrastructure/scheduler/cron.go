package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsDesk/internal/ports"
)

// CronScheduler runs a job on a cron schedule. Runs never overlap: a tick
// that arrives while the previous run is still going is skipped.
type CronScheduler struct {
	spec     string
	location *time.Location
	runFirst bool

	mu   sync.Mutex
	cron *cron.Cron
	stop chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// Spec picks the schedule: an explicit cron expression wins, otherwise a
// positive interval becomes "@every <interval>". Empty means disabled.
func Spec(expr string, interval time.Duration) string {
	if expr != "" {
		return expr
	}
	if interval > 0 {
		return "@every " + interval.String()
	}
	return ""
}

// NewCronScheduler builds a scheduler for spec evaluated in loc. When runFirst
// is set the job also runs once right after Start.
func NewCronScheduler(spec string, loc *time.Location, runFirst bool) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, location: loc, runFirst: runFirst}
}

// Start registers job and starts the cron loop. The loop stops on Stop or
// when ctx is cancelled.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || c.spec == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	cr := cron.New(
		cron.WithLocation(c.location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	id, err := cr.AddFunc(c.spec, func() { job(time.Now().In(c.location)) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", c.spec, err)
	}
	wrapped := cr.Entry(id).WrappedJob

	stop := make(chan struct{})
	c.cron, c.stop = cr, stop
	cr.Start()
	if c.runFirst {
		go wrapped.Run()
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = c.Stop(context.WithoutCancel(ctx))
		case <-stop:
		}
	}()
	return nil
}

// Stop halts the cron loop and waits for a running job to return or ctx to
// expire.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr, stop := c.cron, c.stop
	c.cron, c.stop = nil, nil
	c.mu.Unlock()

	if cr == nil {
		return nil
	}
	close(stop)
	select {
	case <-cr.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
