package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/inkpost/internal/grammar"
)

func TestMetrics_RecordCheck(t *testing.T) {
	m := NewMetrics()
	if s := m.Snapshot(); s.MinCheck != 0 || s.Checks != 0 {
		t.Fatalf("fresh snapshot = %+v", s)
	}

	m.RecordCheck(30*time.Millisecond, 2, nil)
	m.RecordCheck(10*time.Millisecond, 1, nil)
	m.RecordCheck(20*time.Millisecond, 0, errors.New("timeout"))

	s := m.Snapshot()
	if s.Checks != 3 || s.CheckErrors != 1 {
		t.Errorf("counts = %d/%d", s.Checks, s.CheckErrors)
	}
	if s.MinCheck != 10*time.Millisecond || s.MaxCheck != 30*time.Millisecond {
		t.Errorf("min/max = %v/%v", s.MinCheck, s.MaxCheck)
	}
	if s.AvgCheck != 20*time.Millisecond {
		t.Errorf("avg = %v", s.AvgCheck)
	}
	if s.LastCheck != 20*time.Millisecond {
		t.Errorf("last = %v", s.LastCheck)
	}
	// A failed check keeps the previous match count.
	if s.LastMatches != 1 {
		t.Errorf("last matches = %d", s.LastMatches)
	}
	if rate := s.ErrorRate(); rate < 33 || rate > 34 {
		t.Errorf("error rate = %v", rate)
	}
}

func TestMetrics_RecordPublish(t *testing.T) {
	m := NewMetrics()
	m.RecordPublish(nil)
	m.RecordPublish(errors.New("401"))
	s := m.Snapshot()
	if s.Published != 1 || s.PublishFailed != 1 {
		t.Errorf("published = %d, failed = %d", s.Published, s.PublishFailed)
	}
}

func TestTimedChecker(t *testing.T) {
	m := NewMetrics()
	c := TimedChecker(grammar.CheckerFunc(func(context.Context, string) ([]grammar.Match, error) {
		return []grammar.Match{{Offset: 0, Length: 1}}, nil
	}), m)
	matches, err := c.Check(context.Background(), "x")
	if err != nil || len(matches) != 1 {
		t.Fatalf("Check() = %v, %v", matches, err)
	}
	if s := m.Snapshot(); s.Checks != 1 || s.LastMatches != 1 {
		t.Errorf("snapshot = %+v", s)
	}
}
