package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on w while a blocking step runs.
// It stops on its own when the parent context is done, but the line is
// only cleared by stop.
type spinner struct {
	w       io.Writer
	message string
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// startSpinner starts animating message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		message: message,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
		}
	}
}

// stop halts the animation and clears the line. Repeated calls are no-ops.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
	})
}

// succeed stops the spinner and prints a success line.
func (s *spinner) succeed(format string, args ...any) {
	s.stop()
	printSuccess(format, args...)
}

// fail stops the spinner and prints an error line.
func (s *spinner) fail(format string, args ...any) {
	s.stop()
	printError(format, args...)
}
