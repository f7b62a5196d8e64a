package progress

import (
	"fmt"
	"io"
	"sync"
)

// Printer renders item-count progress updates on one terminal line.
// Updates may arrive from multiple goroutines.
type Printer struct {
	out   io.Writer
	label string
	mu    sync.Mutex
	wrote bool
}

// NewPrinter creates a Printer writing to out under the given label.
func NewPrinter(out io.Writer, label string) *Printer {
	return &Printer{out: out, label: label}
}

// Update prints a "done/total" line, overwriting the previous one.
func (p *Printer) Update(done, total int) {
	if p == nil || p.out == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wrote = true
	if total > 0 {
		pct := float64(done) / float64(total) * 100
		fmt.Fprintf(p.out, "\r[%s] %.0f%% (%d/%d files)", p.label, pct, done, total)
	} else {
		fmt.Fprintf(p.out, "\r[%s] %d files", p.label, done)
	}
}

// Finish terminates the progress line if anything was printed.
func (p *Printer) Finish() {
	if p == nil || p.out == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.wrote {
		fmt.Fprint(p.out, "\n")
	}
}
