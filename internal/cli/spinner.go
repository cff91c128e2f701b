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

// spinner animates a one-line progress message until stopped or until its
// context is done.
type spinner struct {
	ctx    context.Context
	w      io.Writer
	quit   chan struct{}
	exited chan struct{}
	once   sync.Once

	mu    sync.Mutex
	msg   string
	drawn int // width of the last frame written
}

// startSpinner begins animating msg on w.
func startSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	s := &spinner{
		ctx:    ctx,
		w:      w,
		msg:    msg,
		quit:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.exited)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-s.quit:
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.msg)
	fmt.Fprint(s.w, "\r"+line)
	s.drawn = len(s.msg) + 2
}

// clear blanks the last drawn frame.
func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn == 0 {
		return
	}
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.drawn)+"\r")
	s.drawn = 0
}

// stop ends the animation and clears the line. It is safe to call more than
// once.
func (s *spinner) stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.exited
}

// cancelled reports whether the spinner ended because its context was done.
func (s *spinner) cancelled() bool {
	return s.ctx.Err() != nil
}
