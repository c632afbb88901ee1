// Package progress draws a terminal spinner while issues are being fetched.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	styleFrame   = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleMessage = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleDone    = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Spinner provides a simple progress indicator with context cancellation support.
type Spinner struct {
	out      io.Writer
	message  string
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  chan struct{}
	frames   []string
	started  bool
	mu       sync.Mutex
}

// New creates a spinner that writes to out and stops when ctx is cancelled.
func New(ctx context.Context, out io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:      out,
		message:  message,
		interval: 100 * time.Millisecond,
		ctx:      spinnerCtx,
		cancel:   cancel,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		frames:   []string{"|", "/", "-", "\\"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleMessage.Render(s.message), styleFrame.Render(frame))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop stops the spinner and clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return
	default:
		close(s.done)
	}
	started := s.started
	s.mu.Unlock()

	s.cancel()
	if started {
		<-s.stopped
	}
	s.clearLine()
}

// StopWithSuccess stops the spinner and leaves message on the line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s\n", styleDone.Render(message))
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
