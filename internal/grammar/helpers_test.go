package grammar

import (
	"context"
	"testing"
	"time"

	"github.com/dshills/inkpost/internal/loop"
)

// startLoop runs a main loop for the duration of the test.
func startLoop(t *testing.T) *loop.Queue {
	t.Helper()
	q := loop.NewQueue(64)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = q.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return q
}

// onLoop runs fn on the main loop and waits for it.
func onLoop(q *loop.Queue, fn func()) {
	done := make(chan struct{})
	q.Post(func() {
		fn()
		close(done)
	})
	<-done
}

// typoChecker flags every occurrence of "Thsi".
var typoChecker = CheckerFunc(func(_ context.Context, text string) ([]Match, error) {
	var out []Match
	runes := []rune(text)
	for i := 0; i+4 <= len(runes); i++ {
		if string(runes[i:i+4]) == "Thsi" {
			out = append(out, Match{
				Offset:       i,
				Length:       4,
				Replacements: []string{"This", "Thai", "Thus", "Thesis", "Thai's", "Tho"},
				Message:      "Possible spelling mistake found.",
				RuleID:       "MORFOLOGIK_RULE_EN_US",
			})
		}
	}
	return out, nil
})

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
