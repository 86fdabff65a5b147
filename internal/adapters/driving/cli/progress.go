package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/custodia-labs/touchminer/internal/core/ports/driving"
)

// progressPrinter redraws one status line after every page. It is silent
// unless its writer is a terminal.
type progressPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool
	drawn   bool
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	enabled := false
	if f, ok := out.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}
	return &progressPrinter{out: out, enabled: enabled}
}

// Update draws status.
func (p *progressPrinter) Update(status driving.MineStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.out, "\r\033[K%s", formatProgress(status))
	p.drawn = true
}

// Done ends the status line.
func (p *progressPrinter) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}

func formatProgress(s driving.MineStatus) string {
	page := fmt.Sprintf("page %d", s.Pages)
	if s.LastPage > 0 {
		page = fmt.Sprintf("page %d/%d", s.Pages, s.LastPage)
	}
	return fmt.Sprintf("%s  commits %d  records %d  skipped %d",
		page, s.CommitsResolved, s.Records, s.SkippedCommits)
}
