package progress_test

import (
	"bytes"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/codedoc/internal/progress"
)

func TestLogReporterLogsEveryInterval(testingInstance *testing.T) {
	core, observed := observer.New(zap.InfoLevel)
	reporter := progress.NewLogReporter(zap.New(core))
	reporter.Start(200)
	for fileCount := 1; fileCount <= 120; fileCount++ {
		reporter.Update(progress.Snapshot{FileCount: fileCount, ByteCount: int64(fileCount) * 1024})
	}
	reporter.Update(progress.Snapshot{FileCount: 100})
	reporter.Finish()

	entries := observed.All()
	if len(entries) != 2 {
		testingInstance.Fatalf("expected 2 progress lines, got %d", len(entries))
	}
	if entries[0].Message != "processed 50 files (50.0 KB) in 0.0s, timeout in 0.0s" {
		testingInstance.Fatalf("unexpected first progress line %q", entries[0].Message)
	}
}

func TestFormatSnapshot(testingInstance *testing.T) {
	line := progress.FormatSnapshot(progress.Snapshot{FileCount: 3, ByteCount: 1536, Elapsed: 1500 * time.Millisecond, Remaining: 10 * time.Second})
	if line != "processed 3 files (1.5 KB) in 1.5s, timeout in 10.0s" {
		testingInstance.Fatalf("unexpected line %q", line)
	}
}

func TestBarReporterWritesToWriter(testingInstance *testing.T) {
	var buffer bytes.Buffer
	reporter := progress.NewBarReporter(&buffer)
	reporter.Start(2)
	reporter.Update(progress.Snapshot{FileCount: 1})
	reporter.Update(progress.Snapshot{FileCount: 2})
	reporter.Finish()
	if buffer.Len() == 0 {
		testingInstance.Fatalf("expected progress bar output")
	}
}

func TestNewReporterFallsBackToLogs(testingInstance *testing.T) {
	if _, ok := progress.NewReporter(false, nil).(*progress.LogReporter); !ok {
		testingInstance.Fatalf("expected log reporter when no bar is requested")
	}
}
