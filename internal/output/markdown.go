package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/codedoc/internal/utils"
)

const (
	documentTitle             = "# Codebase Documentation\n\n"
	directoryStructureHeading = "## Directory Structure\n\n"
	fileContentsHeading       = "## File Contents\n\n"

	// TreeIndentUnit is prepended once per nesting level in the directory tree.
	TreeIndentUnit = "  "

	treeDirectoryLineFormat = "%s- [DIR] **%s/**"
	treeFileLineFormat      = "%s- [FILE] %s"

	sectionHeadingFormat     = "### %s\n\n"
	codeFenceOpenFormat      = "```%s\n"
	codeFenceClose           = "```\n\n"
	skippedLargeFileFormat   = "File skipped (too large): %s\n\n"
	readErrorPlaceholderForm = "Error reading file: %s\n\n"
)

// TreeDirectoryLine renders a directory entry of the tree listing.
func TreeDirectoryLine(indent, name string) string {
	return fmt.Sprintf(treeDirectoryLineFormat, indent, name)
}

// TreeFileLine renders a file entry of the tree listing.
func TreeFileLine(indent, name string) string {
	return fmt.Sprintf(treeFileLineFormat, indent, name)
}

// WriteHeader writes the document title, the directory listing and the
// heading that precedes the file sections.
func WriteHeader(destination io.Writer, treeLines []string) error {
	var builder strings.Builder
	builder.WriteString(documentTitle)
	builder.WriteString(directoryStructureHeading)
	builder.WriteString(strings.Join(treeLines, "\n"))
	builder.WriteString("\n\n")
	builder.WriteString(fileContentsHeading)
	if _, err := io.WriteString(destination, builder.String()); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	return nil
}

// ContentSection renders a fenced file section. A trailing newline is added
// when the content lacks one so the closing fence starts its own line.
func ContentSection(relativePath, languageTag, content string) string {
	var builder strings.Builder
	builder.Grow(len(content) + len(relativePath) + len(languageTag) + 16)
	fmt.Fprintf(&builder, sectionHeadingFormat, relativePath)
	fmt.Fprintf(&builder, codeFenceOpenFormat, languageTag)
	builder.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(codeFenceClose)
	return builder.String()
}

// SkippedLargeSection renders the placeholder for a file over the size limit.
func SkippedLargeSection(relativePath string, sizeBytes int64) string {
	return fmt.Sprintf(sectionHeadingFormat, relativePath) +
		fmt.Sprintf(skippedLargeFileFormat, utils.FormatKilobytes(sizeBytes))
}

// ReadErrorSection renders the placeholder for a file that could not be read.
func ReadErrorSection(relativePath string, readError error) string {
	message := ""
	if readError != nil {
		message = readError.Error()
	}
	return fmt.Sprintf(sectionHeadingFormat, relativePath) +
		fmt.Sprintf(readErrorPlaceholderForm, message)
}
