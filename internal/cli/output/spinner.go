package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows progress on interactive terminals. Without a terminal it
// degrades to plain start and finish lines.
type Spinner struct {
	w       io.Writer
	msg     string
	animate bool
	styles  *Styles
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewSpinner creates a spinner bound to the error writer so progress never
// mixes with parseable output.
func (r *Renderer) NewSpinner(msg string) *Spinner {
	return &Spinner{
		w:       r.errOut,
		msg:     msg,
		animate: r.isTTY && r.EffectiveMode() == ModeText,
		styles:  r.styles,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	if !s.animate {
		_, _ = fmt.Fprintln(s.w, s.msg)
		return
	}

	s.done = make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		i := 0
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				_, _ = fmt.Fprintf(s.w, "\r%s %s", frame, s.msg)
				i++
			}
		}
	}()
}

// Success stops the spinner with a success line.
func (s *Spinner) Success(msg string) {
	s.stop()
	_, _ = fmt.Fprintln(s.w, s.styles.Success.Render("✓ "+msg))
}

// Fail stops the spinner with a failure line.
func (s *Spinner) Fail(msg string) {
	s.stop()
	_, _ = fmt.Fprintln(s.w, s.styles.Error.Render("✗ "+msg))
}

func (s *Spinner) stop() {
	if s.done == nil {
		return
	}
	close(s.done)
	s.wg.Wait()
	s.done = nil
	// Clear the animation line.
	_, _ = fmt.Fprint(s.w, "\r\033[K")
}
