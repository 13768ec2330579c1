package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/codedoc/internal/language"
	"github.com/temirov/codedoc/internal/output"
	"github.com/temirov/codedoc/internal/progress"
	"github.com/temirov/codedoc/internal/tokenizer"
	"github.com/temirov/codedoc/internal/types"
)

const (
	// TimeoutCheckInterval is the number of processed files between two deadline checks.
	TimeoutCheckInterval = 20

	errorWriteSectionFormat = "write section for %s: %v"
	errorCancelledFormat    = "generation cancelled: %v"
	warningStatFileMessage  = "unable to stat file"
)

// ReportOptions configures WriteReport.
type ReportOptions struct {
	// Evaluator re-checks every file before it is read. Nil disables the check.
	Evaluator        Evaluator
	Timeout          time.Duration
	SkipLargeFiles   bool
	MaxFileSizeBytes int64
	Languages        *language.Table
	TokenCounter     tokenizer.Counter
	TokenModel       string
	Progress         progress.Reporter
	Logger           *zap.Logger
	Clock            func() time.Time
	// StartedAt anchors the time budget. The zero value means the moment WriteReport is called.
	StartedAt time.Time
}

// WriteReport appends one section per file to destination and returns the
// tagged outcome. Files are processed in order; a path already written is not
// written again. The deadline is checked before the first file and then every
// TimeoutCheckInterval files. A write failure ends the report with an error
// outcome.
func WriteReport(ctx context.Context, destination io.Writer, files []types.TraversalEntry, options ReportOptions) types.Outcome {
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := options.Progress
	if reporter == nil {
		reporter = progress.NoOpReporter{}
	}
	languages := options.Languages
	if languages == nil {
		languages = language.Default()
	}

	startedAt := options.StartedAt
	if startedAt.IsZero() {
		startedAt = clock()
	}
	deadline := startedAt.Add(options.Timeout)

	outcome := types.Outcome{Status: types.OutcomeSuccess}
	if options.TokenCounter != nil {
		outcome.TokenModel = options.TokenModel
	}
	finish := func(status types.OutcomeStatus, message string) types.Outcome {
		outcome.Status = status
		outcome.Message = message
		outcome.Elapsed = clock().Sub(startedAt)
		return outcome
	}

	inspectionConfig := fileInspectionConfig{
		TokenCounter: options.TokenCounter,
		Warn: func(message string) {
			logger.Warn(message)
		},
	}

	reporter.Start(len(files))
	defer reporter.Finish()

	budgetExhausted := func() (types.Outcome, bool) {
		if contextError := ctx.Err(); contextError != nil {
			return finish(types.OutcomeError, fmt.Sprintf(errorCancelledFormat, contextError)), true
		}
		if !clock().Before(deadline) {
			return finish(types.OutcomeTimeout, ""), true
		}
		return types.Outcome{}, false
	}
	if stoppedOutcome, stopped := budgetExhausted(); stopped {
		return stoppedOutcome
	}

	writtenPaths := make(map[string]struct{}, len(files))
	processedCount := 0
	lastCheckedCount := 0
	for _, entry := range files {
		if processedCount != lastCheckedCount && processedCount%TimeoutCheckInterval == 0 {
			lastCheckedCount = processedCount
			if stoppedOutcome, stopped := budgetExhausted(); stopped {
				return stoppedOutcome
			}
		}

		if _, alreadyWritten := writtenPaths[entry.RelativePath]; alreadyWritten {
			continue
		}
		if options.Evaluator != nil && options.Evaluator.IsIgnored(entry.RelativePath, false) {
			continue
		}
		writtenPaths[entry.RelativePath] = struct{}{}
		processedCount++

		section, skipped := describeEntry(entry, options, logger)
		if skipped {
			continue
		}

		var sectionText string
		if section.Kind == types.SectionKindSkippedLarge {
			sectionText = output.SkippedLargeSection(entry.RelativePath, section.SizeBytes)
			outcome.SkippedLargeCount++
			outcome.SkippedLargeBytes += section.SizeBytes
		} else {
			inspection := inspectFile(entry.AbsolutePath, inspectionConfig)
			switch {
			case inspection.IsBinary:
				reporter.Update(snapshotOf(outcome, clock().Sub(startedAt), deadline.Sub(clock())))
				continue
			case inspection.ReadError != nil:
				section.Kind = types.SectionKindReadError
				sectionText = output.ReadErrorSection(entry.RelativePath, inspection.ReadError)
			default:
				section.Language = languages.Tag(entry.RelativePath)
				sectionText = output.ContentSection(entry.RelativePath, section.Language, inspection.Content)
				outcome.FileCount++
				outcome.ByteCount += int64(len(inspection.Content))
				outcome.TokenCount += inspection.Tokens
			}
		}

		if _, writeError := io.WriteString(destination, sectionText); writeError != nil {
			return finish(types.OutcomeError, fmt.Sprintf(errorWriteSectionFormat, entry.RelativePath, writeError))
		}
		outcome.Sections = append(outcome.Sections, section)
		reporter.Update(snapshotOf(outcome, clock().Sub(startedAt), deadline.Sub(clock())))
	}

	return finish(types.OutcomeSuccess, "")
}

// describeEntry classifies the entry by its size. It reports skipped for
// entries that are not regular files, such as symlinked directories.
func describeEntry(entry types.TraversalEntry, options ReportOptions, logger *zap.Logger) (types.ReportSection, bool) {
	section := types.ReportSection{RelativePath: entry.RelativePath, Kind: types.SectionKindContent}
	fileInfo, statError := os.Stat(entry.AbsolutePath)
	if statError != nil {
		logger.Debug(warningStatFileMessage, zap.String("path", entry.RelativePath), zap.Error(statError))
		return section, false
	}
	if fileInfo.IsDir() {
		return section, true
	}
	section.SizeBytes = fileInfo.Size()
	if options.SkipLargeFiles && fileInfo.Size() > options.MaxFileSizeBytes {
		section.Kind = types.SectionKindSkippedLarge
	}
	return section, false
}

func snapshotOf(outcome types.Outcome, elapsed, remaining time.Duration) progress.Snapshot {
	return progress.Snapshot{
		FileCount: outcome.FileCount,
		ByteCount: outcome.ByteCount,
		Elapsed:   elapsed,
		Remaining: remaining,
	}
}
