// Package clipboard copies finished reports to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable indicates no clipboard utility is available on this system.
var ErrClipboardUnavailable = errors.New("system clipboard is unavailable")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

var _ Copier = (*Service)(nil)

// CopyFile copies the content of the report at reportPath through copier and
// returns the number of bytes copied.
func CopyFile(copier Copier, reportPath string) (int, error) {
	reportBytes, readError := os.ReadFile(reportPath)
	if readError != nil {
		return 0, fmt.Errorf("read report %s for clipboard: %w", reportPath, readError)
	}
	if copyError := copier.Copy(string(reportBytes)); copyError != nil {
		return 0, fmt.Errorf("copy report %s to clipboard: %w", reportPath, copyError)
	}
	return len(reportBytes), nil
}
