package output

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/codedoc/internal/utils"
)

// ErrOutputPathIsDirectory indicates the resolved report path names a directory.
var ErrOutputPathIsDirectory = errors.New("output path is a directory")

const timestampedNameFormat = "%s_%s%s"

// TimestampedFileName inserts a local timestamp between the stem and the
// extension of fileName: report.txt becomes report_20240102_150405.txt.
func TimestampedFileName(fileName string, now time.Time) string {
	directory, baseName := filepath.Split(fileName)
	extension := filepath.Ext(baseName)
	stem := strings.TrimSuffix(baseName, extension)
	return directory + fmt.Sprintf(timestampedNameFormat, stem, utils.FormatFileNameTimestamp(now), extension)
}

// PathOptions describes how the report path is derived.
type PathOptions struct {
	RootDirectory string
	FileName      string
	Timestamp     bool
	Clock         func() time.Time
}

// ResolvePath returns the absolute report path. Relative names are placed in
// the root directory.
func ResolvePath(options PathOptions) (string, error) {
	fileName := options.FileName
	if fileName == "" {
		fileName = utils.DefaultOutputFileName
	}
	if options.Timestamp {
		clock := options.Clock
		if clock == nil {
			clock = time.Now
		}
		fileName = TimestampedFileName(fileName, clock())
	}
	if !filepath.IsAbs(fileName) {
		fileName = filepath.Join(options.RootDirectory, fileName)
	}
	absolutePath, err := filepath.Abs(fileName)
	if err != nil {
		return "", fmt.Errorf("resolve output path %s: %w", fileName, err)
	}
	if info, statErr := os.Stat(absolutePath); statErr == nil && info.IsDir() {
		return "", fmt.Errorf("%s: %w", absolutePath, ErrOutputPathIsDirectory)
	}
	return absolutePath, nil
}

// ReportFile is a buffered report destination on disk.
type ReportFile struct {
	Path   string
	file   *os.File
	writer *bufio.Writer
}

// CreateReportFile creates or truncates the report file at path.
func CreateReportFile(path string) (*ReportFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create report file %s: %w", path, err)
	}
	return &ReportFile{Path: path, file: file, writer: bufio.NewWriter(file)}, nil
}

// Write implements io.Writer.
func (reportFile *ReportFile) Write(data []byte) (int, error) {
	return reportFile.writer.Write(data)
}

// Close flushes buffered data and closes the file. Both steps run even when
// the flush fails.
func (reportFile *ReportFile) Close() error {
	flushError := reportFile.writer.Flush()
	closeError := reportFile.file.Close()
	if flushError != nil {
		return fmt.Errorf("flush report file %s: %w", reportFile.Path, flushError)
	}
	if closeError != nil {
		return fmt.Errorf("close report file %s: %w", reportFile.Path, closeError)
	}
	return nil
}
