package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner redraws a one-line status with the elapsed time until Stop is
// called or its context ends. Only the animation goroutine writes to w.
type spinner struct {
	w     io.Writer
	label string
	start time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// startSpinner begins animating label on w.
func startSpinner(ctx context.Context, w io.Writer, label string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:      w,
		label:  label,
		start:  time.Now(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.animate(ctx)
	return s
}

func (s *spinner) animate(ctx context.Context) {
	defer close(s.done)
	tick := time.NewTicker(spinnerTick)
	defer tick.Stop()

	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			fmt.Fprint(s.w, "\r\x1b[2K")
			return
		case <-tick.C:
			elapsed := time.Since(s.start).Seconds()
			fmt.Fprintf(s.w, "\r%s %s %s",
				styleIconSpinner.Render(spinnerFrames[n%len(spinnerFrames)]),
				s.label,
				StyleDim.Render(fmt.Sprintf("%.1fs", elapsed)))
		}
	}
}

// Stop clears the status line and returns the time since start. It is safe
// to call more than once.
func (s *spinner) Stop() time.Duration {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
	return time.Since(s.start)
}

// Fail stops the spinner and prints msg as an error.
func (s *spinner) Fail(msg string) {
	s.Stop()
	printError("%s", msg)
}
