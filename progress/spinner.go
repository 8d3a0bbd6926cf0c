package progress

import (
	"strings"
	"sync"
	"time"
)

var spinnerParts = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type Spinner struct {
	mu      sync.Mutex
	message string

	value   int
	ticker  *time.Ticker
	stopped bool
}

func NewSpinner(message string) *Spinner {
	s := &Spinner{message: message}
	go s.start()
	return s
}

func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

func (s *Spinner) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sb strings.Builder
	if s.message != "" {
		sb.WriteString(strings.TrimSpace(s.message))
		sb.WriteString(" ")
	}
	if !s.stopped {
		sb.WriteString(spinnerParts[s.value])
		sb.WriteString(" ")
	}
	return sb.String()
}

func (s *Spinner) start() {
	s.ticker = time.NewTicker(100 * time.Millisecond)
	for range s.ticker.C {
		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		s.value = (s.value + 1) % len(spinnerParts)
		s.mu.Unlock()
	}
}

func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}
