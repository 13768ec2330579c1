package commands

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/temirov/codedoc/internal/tokenizer"
	"github.com/temirov/codedoc/internal/utils"
)

const (
	// WarningTokenCountFormat is used when token estimation fails for a file.
	WarningTokenCountFormat = "failed to count tokens for %s: %v"
)

// errContentNotUTF8 is reported for files whose prefix looks like text but whose full content does not decode.
var errContentNotUTF8 = errors.New("content is not valid UTF-8")

type fileInspectionConfig struct {
	TokenCounter tokenizer.Counter
	Warn         func(string)
}

type fileInspectionResult struct {
	IsBinary  bool
	Content   string
	Tokens    int
	ReadError error
}

// inspectFile sniffs the file for binary content and, for text files, reads
// the full content. A failure to open or read the file is returned in
// ReadError so the caller can record a placeholder.
func inspectFile(path string, config fileInspectionConfig) fileInspectionResult {
	warn := config.Warn
	if warn == nil {
		warn = func(string) {}
	}

	isBinary, sniffError := utils.IsFileBinary(path)
	if sniffError != nil {
		return fileInspectionResult{ReadError: sniffError}
	}
	if isBinary {
		return fileInspectionResult{IsBinary: true}
	}

	fileBytes, readError := os.ReadFile(path)
	if readError != nil {
		return fileInspectionResult{ReadError: readError}
	}
	if !utf8.Valid(fileBytes) {
		return fileInspectionResult{ReadError: errContentNotUTF8}
	}

	result := fileInspectionResult{Content: string(fileBytes)}
	if config.TokenCounter != nil {
		countResult, tokenError := tokenizer.CountBytes(config.TokenCounter, fileBytes)
		if tokenError != nil {
			warn(fmt.Sprintf(WarningTokenCountFormat, path, tokenError))
		} else if countResult.Counted {
			result.Tokens = countResult.Tokens
		}
	}
	return result
}
