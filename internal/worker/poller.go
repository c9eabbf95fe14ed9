package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PollerConfig holds configuration for the pending-row poller.
type PollerConfig struct {
	// Interval is how often to sweep pending rows (default: 10s)
	Interval time.Duration
}

func DefaultPollerConfig() PollerConfig {
	return PollerConfig{Interval: 10 * time.Second}
}

// Poller periodically sweeps rows the queue never delivered.
type Poller struct {
	worker *SyncWorker
	config PollerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewPoller(worker *SyncWorker, config PollerConfig) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollerConfig().Interval
	}
	return &Poller{worker: worker, config: config}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("poller is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Pending row poller started",
		"interval", p.config.Interval,
		"batch_size", p.worker.batchSize)
	return nil
}

// Stop signals the loop and waits for it to finish.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Pending row poller stopped")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Pending row poller stop timed out")
		return ctx.Err()
	}
}

func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.worker.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Failed to process pending rows", "error", err)
			}
		}
	}
}
