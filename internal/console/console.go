// Package console renders job status for a person watching the terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/solvia-downloader/solvia/internal/engine/events"
	"github.com/solvia-downloader/solvia/internal/utils"
)

const barWidth = 30

// Options configures a Console
type Options struct {
	// Plain disables colors and the progress bar even on a terminal
	Plain bool
}

// Console writes status lines and an in-place progress line to one writer.
// It is safe for concurrent use.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
	styles   styles
	bar      *progress.Model // nil unless out is a color terminal

	lineWidth int // Width of the progress line currently on screen, 0 if none
}

// New creates a Console on out. Colors and the bar are used only when out is
// a terminal with color support.
func New(out io.Writer, opts Options) *Console {
	var termOpts []termenv.OutputOption
	if opts.Plain {
		termOpts = append(termOpts, termenv.WithProfile(termenv.Ascii))
	}
	r := lipgloss.NewRenderer(out, termOpts...)

	c := &Console{
		out:      out,
		renderer: r,
		styles:   newStyles(r),
	}
	if profile := r.ColorProfile(); profile != termenv.Ascii {
		bar := progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
			progress.WithColorProfile(profile),
		)
		c.bar = &bar
	}
	return c
}

// Run renders messages from ch until it is closed
func (c *Console) Run(ch <-chan any) {
	for msg := range ch {
		c.Handle(msg)
	}
	c.mu.Lock()
	c.endLine()
	c.mu.Unlock()
}

// Handle renders one engine event
func (c *Console) Handle(msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch m := msg.(type) {
	case events.DownloadStartedMsg:
		c.endLine()
		size := "unknown size"
		if m.Total > 0 {
			size = utils.ConvertBytesToHumanReadable(m.Total)
		}
		c.printf("%s %s (%s)\n", c.styles.label.Render("Saving to"), m.DestPath, size)

	case events.ProgressMsg:
		line := m.Snapshot.ConsoleLine()
		if c.bar != nil && m.Snapshot.HasPercentage {
			line = c.bar.ViewAs(m.Snapshot.Fraction()) + " " + line
		}
		w := lipgloss.Width(line)
		pad := ""
		if c.lineWidth > w {
			pad = strings.Repeat(" ", c.lineWidth-w)
		}
		c.printf("\r%s%s", line, pad)
		c.lineWidth = w

	case events.DownloadCompleteMsg:
		c.endLine()
		c.printf("%s %s (%s, %.2f MB/s)\n",
			c.styles.success.Render("Download completed:"),
			m.Filename,
			utils.ConvertBytesToHumanReadable(m.Total),
			m.SpeedMBps,
		)

	case events.DownloadErrorMsg:
		c.endLine()
		if m.Err != nil {
			c.printf("%s %s\n", c.styles.err.Render("Error:"), m.Err.Error())
		}
	}
}

// Banner prints the startup line
func (c *Console) Banner(name, version, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	c.printf("%s %s\n", c.styles.title.Render(name), c.styles.label.Render(version))
	c.printf("%s %s\n", c.styles.label.Render("Downloading"), url)
}

// Error prints a standalone error line
func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	c.printf("%s %s\n", c.styles.err.Render("Error:"), msg)
}

// Println prints a plain line
func (c *Console) Println(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLine()
	c.printf("%s\n", msg)
}

// endLine terminates an in-place progress line. Caller holds mu.
func (c *Console) endLine() {
	if c.lineWidth > 0 {
		c.printf("\n")
		c.lineWidth = 0
	}
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}
