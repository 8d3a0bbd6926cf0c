package progress

import (
	"fmt"
	"strings"
	"sync"
)

// Bar tracks discrete work units, e.g. pages classified out of pages total.
type Bar struct {
	mu      sync.Mutex
	message string
	current int
	total   int
}

func NewBar(message string, total int) *Bar {
	return &Bar{message: message, total: total}
}

// Increment advances the bar by one unit.
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current < b.total {
		b.current++
	}
}

func (b *Bar) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	const width = 30
	filled := 0
	percent := 0
	if b.total > 0 {
		filled = width * b.current / b.total
		percent = 100 * b.current / b.total
	}

	var sb strings.Builder
	if b.message != "" {
		sb.WriteString(b.message)
		sb.WriteString(" ")
	}
	fmt.Fprintf(&sb, "%3d%% |%s%s| %d/%d",
		percent,
		strings.Repeat("█", filled),
		strings.Repeat(" ", width-filled),
		b.current, b.total)
	return sb.String()
}
