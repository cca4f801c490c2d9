package controllers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunRefresh(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	core, logs := observer.New(zapcore.InfoLevel)
	day := time.Date(2016, 6, 21, 0, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	var starts []time.Time
	done := make(chan struct{})

	go func() {
		defer close(done)
		RunRefresh(ctx, Refresh{
			Name:     "test",
			Interval: 5 * time.Millisecond,
			Now:      func() time.Time { return day },
			Run: func(_ context.Context, start time.Time) error {
				mu.Lock()
				defer mu.Unlock()
				starts = append(starts, start)
				// The first run fails and the next tick retries
				if len(starts) == 1 {
					return errors.New("transient")
				}
				return nil
			},
		}, zap.New(core).Sugar())
	}()

	runs := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(starts)
	}
	deadline := time.Now().Add(5 * time.Second)
	for runs() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not stop after cancellation")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(starts) < 3 {
		t.Fatalf("refresh ran %d times, expected at least 3", len(starts))
	}
	for i, s := range starts {
		if !s.Equal(day) {
			t.Errorf("run %d started at %v, expected %v", i, s, day)
		}
	}

	failed := logs.FilterMessage("almanac refresh failed").All()
	if len(failed) != 1 {
		t.Fatalf("got %d failure entries, expected 1", len(failed))
	}
	if got := failed[0].ContextMap()["window_start"]; got != "2016-06-21" {
		t.Errorf("window_start = %v, expected 2016-06-21", got)
	}
	if logs.FilterMessage("almanac refresh recovered").Len() != 1 {
		t.Error("expected a recovery entry after the retry succeeded")
	}
}
