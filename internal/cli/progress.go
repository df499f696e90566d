package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"search/internal/usecase"
)

// newProgress returns a progress callback drawing a bar on stderr, or nil
// when stderr is not a terminal.
func newProgress(enabled bool) usecase.ProgressFunc {
	if !enabled || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progressTo(os.Stderr)
}

func progressTo(w io.Writer) usecase.ProgressFunc {
	p := &indexProgress{w: w}
	return p.update
}

// indexProgress creates its bar on the first update, once the file total is
// known.
type indexProgress struct {
	mu    sync.Mutex
	w     io.Writer
	bar   *progressbar.ProgressBar
	start time.Time
}

func (p *indexProgress) update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar == nil {
		p.start = time.Now()
		p.bar = newBar(p.w, total)
	}
	_ = p.bar.Set(done)

	if left, ok := remaining(done, total, time.Since(p.start)); ok {
		p.bar.Describe("[cyan]Indexing[reset] " + shortDuration(left) + " left")
	}
}

func newBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]#[reset]",
			SaucerPadding: ".",
			BarStart:      "|",
			BarEnd:        "|",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// remaining extrapolates the time left from the average time per file so far.
func remaining(done, total int, elapsed time.Duration) (time.Duration, bool) {
	if done <= 0 || elapsed <= 0 || done > total {
		return 0, false
	}
	return elapsed / time.Duration(done) * time.Duration(total-done), true
}

func shortDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "<1s"
	case d < time.Hour:
		return d.Truncate(time.Second).String()
	default:
		return strings.TrimSuffix(d.Truncate(time.Minute).String(), "0s")
	}
}
