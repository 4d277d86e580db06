package cli

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSpinnerNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerTo(context.Background(), &buf, "Fetching...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if buf.Len() != 0 {
		t.Errorf("spinner drew to a non-terminal writer: %q", buf.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinner(ctx, "Testing with context...")
	s.Start()
	cancel()

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after context cancellation")
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := newSpinnerTo(context.Background(), &bytes.Buffer{}, "x")
	s.Start()
	s.Stop()
	s.Stop()
}
