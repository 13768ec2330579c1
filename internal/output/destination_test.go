package output_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/temirov/codedoc/internal/output"
)

var fixedInstant = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)

// TestTimestampedFileName verifies the stem_timestamp.ext layout.
func TestTimestampedFileName(testingInstance *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "default name", input: "codebase_documentation.txt", expected: "codebase_documentation_20240305_140709.txt"},
		{name: "no extension", input: "report", expected: "report_20240305_140709"},
		{name: "nested directory", input: filepath.Join("out", "doc.md"), expected: filepath.Join("out", "doc_20240305_140709.md")},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(subTest *testing.T) {
			if actual := output.TimestampedFileName(testCase.input, fixedInstant); actual != testCase.expected {
				subTest.Fatalf("got %q, want %q", actual, testCase.expected)
			}
		})
	}
}

// TestResolvePath verifies root placement, timestamps and directory rejection.
func TestResolvePath(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	clock := func() time.Time { return fixedInstant }

	plainPath, err := output.ResolvePath(output.PathOptions{RootDirectory: rootDirectory, FileName: "doc.txt"})
	if err != nil {
		testingInstance.Fatalf("ResolvePath error: %v", err)
	}
	if plainPath != filepath.Join(rootDirectory, "doc.txt") {
		testingInstance.Fatalf("unexpected plain path %s", plainPath)
	}

	stampedPath, err := output.ResolvePath(output.PathOptions{RootDirectory: rootDirectory, Timestamp: true, Clock: clock})
	if err != nil {
		testingInstance.Fatalf("ResolvePath error: %v", err)
	}
	if stampedPath != filepath.Join(rootDirectory, "codebase_documentation_20240305_140709.txt") {
		testingInstance.Fatalf("unexpected timestamped path %s", stampedPath)
	}

	if err := os.Mkdir(filepath.Join(rootDirectory, "taken"), 0o755); err != nil {
		testingInstance.Fatalf("mkdir: %v", err)
	}
	_, err = output.ResolvePath(output.PathOptions{RootDirectory: rootDirectory, FileName: "taken"})
	if !errors.Is(err, output.ErrOutputPathIsDirectory) {
		testingInstance.Fatalf("expected ErrOutputPathIsDirectory, got %v", err)
	}
}

// TestReportFileFlushesOnClose verifies buffered data reaches disk.
func TestReportFileFlushesOnClose(testingInstance *testing.T) {
	path := filepath.Join(testingInstance.TempDir(), "report.txt")
	reportFile, err := output.CreateReportFile(path)
	if err != nil {
		testingInstance.Fatalf("CreateReportFile error: %v", err)
	}
	if _, err := reportFile.Write([]byte("hello")); err != nil {
		testingInstance.Fatalf("Write error: %v", err)
	}
	if err := reportFile.Close(); err != nil {
		testingInstance.Fatalf("Close error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		testingInstance.Fatalf("read report: %v", err)
	}
	if string(content) != "hello" {
		testingInstance.Fatalf("unexpected content %q", content)
	}
}
