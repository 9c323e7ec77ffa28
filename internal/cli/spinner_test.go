package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinner(context.Background(), &buf, "Rendering badge")
	time.Sleep(3 * spinnerTick)

	elapsed := s.Stop()
	if elapsed < 3*spinnerTick {
		t.Errorf("Stop() = %v, want at least %v", elapsed, 3*spinnerTick)
	}
	out := buf.String()
	if !strings.Contains(out, "Rendering badge") {
		t.Errorf("output missing label: %q", out)
	}
	if !strings.HasSuffix(out, "\r\x1b[2K") {
		t.Errorf("output should end by clearing the line: %q", out)
	}

	s.Stop()
	if buf.String() != out {
		t.Error("second Stop() should not write")
	}
}

func TestSpinner_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := startSpinner(ctx, &buf, "waiting")
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancel")
	}
	s.Stop()
}
