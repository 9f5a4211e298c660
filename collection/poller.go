package collection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/turbot/elb-access-log-collector/collection_state"
	"github.com/turbot/elb-access-log-collector/metrics"
)

// Poller runs collection cycles on an interval, at most one at a time,
// persisting the state after every completed cycle
type Poller struct {
	collector *Collector
	state     *collection_state.ElbCollectionState
	interval  time.Duration
	metrics   *metrics.CollectorMetrics

	running sync.Mutex
}

func NewPoller(collector *Collector, state *collection_state.ElbCollectionState, interval time.Duration, m *metrics.CollectorMetrics) *Poller {
	return &Poller{
		collector: collector,
		state:     state,
		interval:  interval,
		metrics:   m,
	}
}

// Run triggers a cycle every interval until ctx is cancelled. The first cycle runs after one interval.
// A tick that arrives while a cycle is still running is skipped. Run returns once the last cycle has stopped.
func (p *Poller) Run(ctx context.Context) error {
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := p.Trigger(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, ErrCycleInProgress) {
					slog.Error("Collection cycle failed", "error", err)
				}
			}()
		}
	}
}

// Trigger runs a single cycle. If a cycle is already running it returns ErrCycleInProgress.
// A cancelled cycle persists nothing.
func (p *Poller) Trigger(ctx context.Context) error {
	if !p.running.TryLock() {
		slog.Warn("Skipping collection cycle, previous cycle still running")
		p.metrics.Cycle(metrics.CycleSkipped, 0)
		return ErrCycleInProgress
	}
	defer p.running.Unlock()

	start := time.Now()
	executionId := newExecutionId()
	watermark := p.state.GetWatermark()
	slog.Info("Starting collection cycle", "execution_id", executionId, "watermark", watermark)

	newWatermark, err := p.collector.RunOneCycle(ctx, watermark)
	if ctx.Err() != nil {
		p.metrics.Cycle(metrics.CycleError, time.Since(start).Seconds())
		return ctx.Err()
	}
	var listErr *PartialListError
	if err != nil && !errors.As(err, &listErr) {
		p.metrics.Cycle(metrics.CycleError, time.Since(start).Seconds())
		return err
	}

	// a partial listing still saves the history of the objects which were collected
	p.state.Advance(newWatermark)
	if saveErr := p.state.Save(); saveErr != nil {
		p.metrics.Cycle(metrics.CycleError, time.Since(start).Seconds())
		return errors.Join(err, saveErr)
	}

	result := metrics.CycleOK
	if err != nil {
		result = metrics.CycleError
	}
	p.metrics.Cycle(result, time.Since(start).Seconds())
	p.metrics.State(float64(p.state.GetWatermark().Unix()), p.historyLength())

	slog.Info("Completed collection cycle", "execution_id", executionId, "watermark", p.state.GetWatermark(), "duration", time.Since(start))
	return err
}

func (p *Poller) historyLength() int {
	p.state.Mut.RLock()
	defer p.state.Mut.RUnlock()
	return p.state.History.Len()
}
