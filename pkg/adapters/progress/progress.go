// Package progress renders frame progress bars on the terminal.
package progress

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/user/reelcut/pkg/ports"
)

// Bar implements ports.ProgressReporter with schollz/progressbar.
type Bar struct {
	w io.Writer
}

// New creates a Bar that writes to w.
func New(w io.Writer) *Bar {
	return &Bar{w: w}
}

// ForTerminal returns a Bar on stderr when it is a terminal, and Noop otherwise.
func ForTerminal(enabled bool) ports.ProgressReporter {
	fd := os.Stderr.Fd()
	if !enabled || !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) {
		return Noop{}
	}
	return New(os.Stderr)
}

// Start begins a bar. A negative total renders a spinner.
func (b *Bar) Start(description string, total int) ports.ProgressTask {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
	)
	return &task{bar: bar}
}

type task struct {
	bar *progressbar.ProgressBar
}

func (t *task) Add(n int) {
	_ = t.bar.Add(n)
}

func (t *task) Done() {
	_ = t.bar.Finish()
}

// Noop discards progress.
type Noop struct{}

func (Noop) Start(string, int) ports.ProgressTask { return noopTask{} }

type noopTask struct{}

func (noopTask) Add(int) {}
func (noopTask) Done()   {}

var (
	_ ports.ProgressReporter = (*Bar)(nil)
	_ ports.ProgressReporter = Noop{}
)
