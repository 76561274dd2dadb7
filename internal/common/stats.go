package common

import (
	"sync/atomic"
	"time"
)

// ExtractStats holds atomic counters for extraction telemetry
type ExtractStats struct {
	FilesScanned Counter // Candidate files handed to the parser pool
	FilesSkipped Counter // Files rejected by name, columns, or row match
	Observations Counter // Observations extracted

	// Internal state for reporter
	running atomic.Bool
	stopCh  chan struct{}
	silent  bool
	logf    func(format string, v ...any)
}

// Counter is an atomic event counter safe for concurrent workers.
type Counter struct {
	n atomic.Uint64
}

// Add atomically increments the counter
func (c *Counter) Add(delta uint64) {
	c.n.Add(delta)
}

// Get atomically reads the counter
func (c *Counter) Get() uint64 {
	return c.n.Load()
}

// NewExtractStats creates a new ExtractStats instance
func NewExtractStats(logf func(format string, v ...any)) *ExtractStats {
	return &ExtractStats{
		stopCh: make(chan struct{}),
		logf:   logf,
	}
}

// SetSilent enables or disables silent mode
func (s *ExtractStats) SetSilent(silent bool) {
	s.silent = silent
}

// StartReporter starts a background goroutine that prints extraction progress
// every 2s. Useful when the source trees hold tens of thousands of files.
func (s *ExtractStats) StartReporter() {
	if s.running.Load() {
		return // Already running
	}
	s.running.Store(true)
	go s.reporterLoop()
}

// StopReporter stops the background reporter goroutine
func (s *ExtractStats) StopReporter() {
	if !s.running.Load() {
		return
	}
	s.running.Store(false)
	close(s.stopCh)
}

// reporterLoop is the background goroutine that periodically prints progress
func (s *ExtractStats) reporterLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.printStatus()
		}
	}
}

func (s *ExtractStats) printStatus() {
	if s.silent || s.logf == nil {
		return
	}
	s.logf("[Progress] Scanned: %d files | Skipped: %d | Observations: %d",
		s.FilesScanned.Get(),
		s.FilesSkipped.Get(),
		s.Observations.Get(),
	)
}

// LogSummary prints the final per-source extraction totals
func (s *ExtractStats) LogSummary(source string) {
	if s.logf == nil {
		return
	}
	s.logf("[%s] Scanned: %d files | Skipped: %d | Observations: %d",
		source,
		s.FilesScanned.Get(),
		s.FilesSkipped.Get(),
		s.Observations.Get(),
	)
}
