package app

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/dshills/inkpost/internal/grammar"
)

// Metrics tracks grammar check and publish timings.
type Metrics struct {
	checkCount   atomic.Uint64
	checkErrors  atomic.Uint64
	checkTotalNs atomic.Int64
	checkMinNs   atomic.Int64
	checkMaxNs   atomic.Int64
	lastCheckNs  atomic.Int64
	lastMatches  atomic.Int64

	publishCount  atomic.Uint64
	publishFailed atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	// First check will be smaller.
	m.checkMinNs.Store(math.MaxInt64)
	return m
}

// RecordCheck records one grammar check.
func (m *Metrics) RecordCheck(duration time.Duration, matches int, err error) {
	ns := duration.Nanoseconds()

	m.checkCount.Add(1)
	m.checkTotalNs.Add(ns)
	m.lastCheckNs.Store(ns)
	if err != nil {
		m.checkErrors.Add(1)
	} else {
		m.lastMatches.Store(int64(matches))
	}

	for {
		old := m.checkMinNs.Load()
		if ns >= old || m.checkMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.checkMaxNs.Load()
		if ns <= old || m.checkMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordPublish records one publish attempt.
func (m *Metrics) RecordPublish(err error) {
	if err != nil {
		m.publishFailed.Add(1)
		return
	}
	m.publishCount.Add(1)
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	count := m.checkCount.Load()
	var avg int64
	if count > 0 {
		avg = m.checkTotalNs.Load() / int64(count)
	}
	minNs := m.checkMinNs.Load()
	if minNs == math.MaxInt64 {
		minNs = 0
	}
	return MetricsSnapshot{
		Uptime:        time.Since(m.startTime),
		Checks:        count,
		CheckErrors:   m.checkErrors.Load(),
		AvgCheck:      time.Duration(avg),
		MinCheck:      time.Duration(minNs),
		MaxCheck:      time.Duration(m.checkMaxNs.Load()),
		LastCheck:     time.Duration(m.lastCheckNs.Load()),
		LastMatches:   int(m.lastMatches.Load()),
		Published:     m.publishCount.Load(),
		PublishFailed: m.publishFailed.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime        time.Duration
	Checks        uint64
	CheckErrors   uint64
	AvgCheck      time.Duration
	MinCheck      time.Duration
	MaxCheck      time.Duration
	LastCheck     time.Duration
	LastMatches   int
	Published     uint64
	PublishFailed uint64
}

// ErrorRate returns the percentage of failed checks.
func (s MetricsSnapshot) ErrorRate() float64 {
	if s.Checks == 0 {
		return 0
	}
	return float64(s.CheckErrors) / float64(s.Checks) * 100
}

// TimedChecker wraps a checker and records every call in m.
func TimedChecker(c grammar.Checker, m *Metrics) grammar.Checker {
	return grammar.CheckerFunc(func(ctx context.Context, text string) ([]grammar.Match, error) {
		start := time.Now()
		matches, err := c.Check(ctx, text)
		m.RecordCheck(time.Since(start), len(matches), err)
		return matches, err
	})
}
