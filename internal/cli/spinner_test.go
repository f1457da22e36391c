package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureStatus(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	old := statusOut
	statusOut = buf
	t.Cleanup(func() { statusOut = old })
	return buf
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	buf := captureStatus(t)
	s := newSpinner(context.Background(), "Aligning %d sequences...", 3)
	s.Start()
	time.Sleep(3 * spinnerInterval)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Aligning 3 sequences...") {
		t.Errorf("output %q missing message", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("output should end by clearing the line, got %q", out)
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	captureStatus(t)
	s := newSpinner(context.Background(), "x")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopsWithContext(t *testing.T) {
	captureStatus(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "x")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked after context cancellation")
	}
}

func TestFoldProgress(t *testing.T) {
	s := newSpinner(context.Background(), "start")
	p := &foldProgress{s: s, total: 3}
	ctx := context.Background()

	p.OnFold(ctx, 2, 10, 10, false)
	p.OnFold(ctx, 0, 10, 1, false)
	if got := s.Message(); got != "Folding sequence 2/3..." {
		t.Errorf("Message() = %q", got)
	}
	p.OnExtract(ctx, "msa", 12)
	if got := s.Message(); got != "Extracting msa..." {
		t.Errorf("Message() = %q", got)
	}
}
