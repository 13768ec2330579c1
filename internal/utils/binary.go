package utils

import (
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// SniffLength defines the maximum number of bytes read when detecting binary content.
const SniffLength = 1024

// IsBinary reports whether the provided byte slice fails to decode as UTF-8 text.
// When truncated is true the slice is a prefix of a longer file, so a multi-byte
// rune cut at the end of the slice is not treated as a decoding failure.
func IsBinary(data []byte, truncated bool) bool {
	if len(data) == 0 {
		return false
	}
	if truncated {
		data = trimIncompleteRune(data)
	}
	return !utf8.Valid(data)
}

// IsFileBinary reads up to SniffLength bytes from the file at path and determines
// if the content appears to be binary.
func IsFileBinary(path string) (bool, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false, openError
	}
	defer fileHandle.Close()

	buffer := make([]byte, SniffLength)
	bytesRead, readError := io.ReadFull(fileHandle, buffer)
	if readError != nil && !errors.Is(readError, io.EOF) && !errors.Is(readError, io.ErrUnexpectedEOF) {
		return false, readError
	}
	return IsBinary(buffer[:bytesRead], bytesRead == SniffLength), nil
}

// trimIncompleteRune drops a trailing partial UTF-8 sequence.
func trimIncompleteRune(data []byte) []byte {
	for back := 1; back < utf8.UTFMax && back <= len(data); back++ {
		start := len(data) - back
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if !utf8.FullRune(data[start:]) {
			return data[:start]
		}
		return data
	}
	return data
}
