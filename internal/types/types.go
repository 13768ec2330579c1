// Package types defines every cross‑package data structure used by the codedoc CLI.
package types

import (
	"fmt"
	"time"

	"github.com/temirov/codedoc/internal/utils"
)

// EntryKind classifies a traversal entry. Walks only emit files; directories
// appear as tree lines.
type EntryKind string

const EntryKindFile EntryKind = "file"

// TraversalEntry is one filesystem entry observed during a single walk.
type TraversalEntry struct {
	RelativePath string
	AbsolutePath string
	Kind         EntryKind
	Included     bool
	Depth        int
}

// TreeListing is the result of walking a root directory.
type TreeListing struct {
	// Lines holds the nested Markdown tree, one entry per line.
	Lines []string
	// Files holds included files in traversal order.
	Files []TraversalEntry
}

// SectionKind classifies a section appended to the report.
type SectionKind string

const (
	SectionKindContent      SectionKind = "content"
	SectionKindSkippedLarge SectionKind = "skipped_large"
	SectionKindReadError    SectionKind = "read_error"
)

// ReportSection describes one section appended to the report.
type ReportSection struct {
	RelativePath string
	Kind         SectionKind
	Language     string
	SizeBytes    int64
}

// OutcomeStatus tags the result of a report run.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeTimeout OutcomeStatus = "timeout"
	OutcomeError   OutcomeStatus = "error"
)

// Outcome is the tagged result of writing a report.
type Outcome struct {
	Status            OutcomeStatus
	FileCount         int
	ByteCount         int64
	SkippedLargeCount int
	SkippedLargeBytes int64
	TokenCount        int
	TokenModel        string
	Message           string
	Elapsed           time.Duration
	Sections          []ReportSection
}

// Succeeded reports whether the outcome is a full success.
func (outcome Outcome) Succeeded() bool {
	return outcome.Status == OutcomeSuccess
}

// String renders the outcome as a single human-readable line.
func (outcome Outcome) String() string {
	elapsedSeconds := outcome.Elapsed.Seconds()
	switch outcome.Status {
	case OutcomeSuccess:
		line := fmt.Sprintf("Successfully processed %d files (%s) in %.1f seconds", outcome.FileCount, utils.FormatKilobytes(outcome.ByteCount), elapsedSeconds)
		if outcome.SkippedLargeCount > 0 {
			line += fmt.Sprintf(" (skipped %d large files totaling %s)", outcome.SkippedLargeCount, utils.FormatMegabytes(outcome.SkippedLargeBytes))
		}
		if outcome.TokenCount > 0 {
			line += fmt.Sprintf(", ~%d tokens", outcome.TokenCount)
			if outcome.TokenModel != "" {
				line += " (" + outcome.TokenModel + ")"
			}
		}
		return line
	case OutcomeTimeout:
		return fmt.Sprintf("Processing timed out after %.1f seconds. Processed %d files (%s) so far.", elapsedSeconds, outcome.FileCount, utils.FormatKilobytes(outcome.ByteCount))
	default:
		return fmt.Sprintf("Error processing codebase after %.1f seconds: %s", elapsedSeconds, outcome.Message)
	}
}
