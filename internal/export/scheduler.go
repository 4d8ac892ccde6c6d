package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Destination is the interface for an export target (file, S3, git).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Export renders the JSONL once and writes it to every destination. A failed
// destination does not stop the others; their errors are joined.
func Export(ctx context.Context, src CaseSource, destinations []Destination, opts Options) (int, error) {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, src, &buf, opts); err != nil {
		return 0, err
	}
	data := buf.Bytes()

	var errs []error
	for _, dest := range destinations {
		if err := dest.Write(ctx, data); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", destName(dest), err))
		}
	}
	return len(data), errors.Join(errs...)
}

func destName(d Destination) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", d)
}

// Scheduler runs periodic exports to one or more destinations.
type Scheduler struct {
	src          CaseSource
	destinations []Destination
	opts         Options
	interval     time.Duration
	logger       *slog.Logger
	observe      func(bytes int, err error)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from src to the given
// destinations at the specified interval.
func NewScheduler(src CaseSource, destinations []Destination, opts Options, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		src:          src,
		destinations: destinations,
		opts:         opts,
		interval:     interval,
		logger:       logger,
	}
}

// OnExport registers fn to be called after every export run. It must be
// called before Start.
func (s *Scheduler) OnExport(fn func(bytes int, err error)) {
	s.observe = fn
}

// Start begins periodic export. It runs an initial export immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.exportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	n, err := Export(ctx, s.src, s.destinations, s.opts)
	if s.observe != nil {
		s.observe(n, err)
	}
	if err != nil {
		s.logger.Error("export failed", "err", err)
		if n == 0 {
			return
		}
	}
	s.logger.Info("export completed", "destinations", len(s.destinations), "bytes", n)
}
