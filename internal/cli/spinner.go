package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a progress indicator on stderr while a conversion
// runs. It stops on Stop or when the parent context is cancelled, and
// always clears its line so command output stays clean.
type Spinner struct {
	message string
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// newSpinner creates a spinner tied to ctx.
func newSpinner(ctx context.Context, message string) *Spinner {
	s := &Spinner{
		message: message,
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go func() {
		select {
		case <-ctx.Done():
			s.once.Do(func() { close(s.quit) })
		case <-s.done:
		}
	}()
	return s
}

// Start begins the animation. Only the spinner goroutine writes to
// stderr, so no locking is needed around the frames.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.quit:
				fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
			}
		}
	}()
}

// Stop halts the animation and waits for the line to be cleared. Safe to
// call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}
