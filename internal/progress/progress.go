// Package progress reports report-generation progress either as periodic log
// lines or as a terminal progress bar.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/temirov/codedoc/internal/utils"
)

// LogInterval is the number of files between two progress log lines.
const LogInterval = 50

const progressMessageFormat = "processed %d files (%s) in %.1fs, timeout in %.1fs"

// Snapshot captures the counters of a running report.
type Snapshot struct {
	FileCount int
	ByteCount int64
	Elapsed   time.Duration
	Remaining time.Duration
}

// Reporter receives progress notifications from the report writer.
type Reporter interface {
	Start(totalFiles int)
	Update(snapshot Snapshot)
	Finish()
}

// LogReporter emits an info line every LogInterval files.
type LogReporter struct {
	logger        *zap.Logger
	lastLogged    int
	logEveryFiles int
}

// NewLogReporter creates a reporter that logs through logger.
func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger, logEveryFiles: LogInterval}
}

// Start implements Reporter.
func (reporter *LogReporter) Start(totalFiles int) {
	reporter.lastLogged = 0
	reporter.logger.Debug("processing files", zap.Int("candidates", totalFiles))
}

// Update implements Reporter.
func (reporter *LogReporter) Update(snapshot Snapshot) {
	if snapshot.FileCount == 0 || snapshot.FileCount == reporter.lastLogged {
		return
	}
	if snapshot.FileCount%reporter.logEveryFiles != 0 {
		return
	}
	reporter.lastLogged = snapshot.FileCount
	reporter.logger.Info(FormatSnapshot(snapshot))
}

// Finish implements Reporter.
func (reporter *LogReporter) Finish() {}

// FormatSnapshot renders a snapshot as a single progress line.
func FormatSnapshot(snapshot Snapshot) string {
	return fmt.Sprintf(progressMessageFormat, snapshot.FileCount, utils.FormatKilobytes(snapshot.ByteCount), snapshot.Elapsed.Seconds(), snapshot.Remaining.Seconds())
}

// BarReporter renders a progress bar over the candidate files.
type BarReporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewBarReporter creates a bar reporter writing to writer.
func NewBarReporter(writer io.Writer) *BarReporter {
	return &BarReporter{writer: writer}
}

// Start implements Reporter.
func (reporter *BarReporter) Start(totalFiles int) {
	reporter.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("documenting"),
		progressbar.OptionSetWriter(reporter.writer),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(reporter.writer, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Update implements Reporter.
func (reporter *BarReporter) Update(snapshot Snapshot) {
	if reporter.bar == nil {
		return
	}
	_ = reporter.bar.Set(snapshot.FileCount)
}

// Finish implements Reporter.
func (reporter *BarReporter) Finish() {
	if reporter.bar != nil {
		_ = reporter.bar.Finish()
	}
}

// NoOpReporter discards every notification.
type NoOpReporter struct{}

// Start implements Reporter.
func (NoOpReporter) Start(int) {}

// Update implements Reporter.
func (NoOpReporter) Update(Snapshot) {}

// Finish implements Reporter.
func (NoOpReporter) Finish() {}

// NewReporter returns a bar reporter when a bar is requested and stderr is a
// terminal, and a log reporter otherwise.
func NewReporter(barRequested bool, logger *zap.Logger) Reporter {
	if barRequested && term.IsTerminal(int(os.Stderr.Fd())) {
		return NewBarReporter(os.Stderr)
	}
	return NewLogReporter(logger)
}
