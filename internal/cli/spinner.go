package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/poagraph/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line on statusOut until stopped or until its
// context ends. The message can change while it runs.
type spinner struct {
	mu      sync.Mutex
	msg     string
	width   int // widest line drawn, for clearing
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

func newSpinner(ctx context.Context, format string, args ...any) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		msg:     fmt.Sprintf(format, args...),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
}

// Start draws frames in the background.
func (s *spinner) Start() {
	go func() {
		defer close(s.stopped)
		t := time.NewTicker(spinnerInterval)
		defer t.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				return
			case <-t.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Set replaces the message.
func (s *spinner) Set(format string, args ...any) {
	s.mu.Lock()
	s.msg = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. Repeated calls are no-ops.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(statusOut, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.msg)
	pad := max(s.width-len(line), 0)
	s.width = max(s.width, len(line))
	fmt.Fprintf(statusOut, "\r%s%s", line, strings.Repeat(" ", pad))
}

// Message returns the current message.
func (s *spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msg
}

// foldProgress moves a spinner along as sequences are folded.
type foldProgress struct {
	observability.Nop
	s     *spinner
	total int

	mu     sync.Mutex
	folded int
}

func (p *foldProgress) OnFold(context.Context, int, int, int, bool) {
	p.mu.Lock()
	p.folded++
	n := p.folded
	p.mu.Unlock()
	p.s.Set("Folding sequence %d/%d...", n, p.total)
}

func (p *foldProgress) OnExtract(_ context.Context, kind string, _ int) {
	p.s.Set("Extracting %s...", kind)
}
