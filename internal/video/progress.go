package video

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ProgressBar implements the ProgressReporter interface
type ProgressBar struct {
	out         io.Writer
	total       int
	current     int
	startTime   time.Time
	lastUpdate  time.Time
	description string
}

func NewProgressBar(description string) *ProgressBar {
	return newProgressBar(description, os.Stdout)
}

func newProgressBar(description string, out io.Writer) *ProgressBar {
	return &ProgressBar{
		out:         out,
		total:       100,
		startTime:   time.Now(),
		description: description,
	}
}

func (p *ProgressBar) Report(progress float64) {
	p.update(progress, false)
}

func (p *ProgressBar) update(progress float64, force bool) {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	p.current = int(progress * float64(p.total))

	// Only update display if enough time has passed
	if !force && time.Since(p.lastUpdate) < 100*time.Millisecond {
		return
	}
	p.lastUpdate = time.Now()

	percentage := float64(p.current) / float64(p.total) * 100
	elapsed := time.Since(p.startTime)

	barWidth := 30
	completed := barWidth * p.current / p.total
	bar := strings.Repeat("=", completed) + strings.Repeat("-", barWidth-completed)

	fmt.Fprintf(p.out, "\r%s [%s] %.1f%% Elapsed: %v",
		p.description,
		bar,
		percentage,
		elapsed.Round(time.Second),
	)
}

func (p *ProgressBar) ReportError(err error) {
	fmt.Fprintf(p.out, "\nError: %v\n", err)
}

func (p *ProgressBar) ReportComplete() {
	p.update(1.0, true)
	fmt.Fprintln(p.out)
}
