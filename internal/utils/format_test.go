package utils_test

import (
	"testing"
	"time"

	"github.com/temirov/codedoc/internal/utils"
)

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative", bytes: -1, expected: "0b"},
		{name: "zero", bytes: 0, expected: "0b"},
		{name: "bytes", bytes: 512, expected: "512b"},
		{name: "one kilobyte", bytes: 1024, expected: "1kb"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5kb"},
		{name: "ten megabytes", bytes: 10 * 1024 * 1024, expected: "10mb"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := utils.FormatFileSize(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestFormatKilobytesAndMegabytes(t *testing.T) {
	testCases := []struct {
		name     string
		format   func(int64) string
		bytes    int64
		expected string
	}{
		{name: "zero kilobytes", format: utils.FormatKilobytes, bytes: 0, expected: "0.0 KB"},
		{name: "fractional kilobytes", format: utils.FormatKilobytes, bytes: 1536, expected: "1.5 KB"},
		{name: "two megabytes in kilobytes", format: utils.FormatKilobytes, bytes: 2 * 1024 * 1024, expected: "2048.0 KB"},
		{name: "one megabyte", format: utils.FormatMegabytes, bytes: 1024 * 1024, expected: "1.0 MB"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result := testCase.format(testCase.bytes)
			if result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestFormatFileNameTimestamp(t *testing.T) {
	location := time.Now().Location()
	value := time.Date(2024, time.January, 2, 15, 4, 5, 0, location)
	result := utils.FormatFileNameTimestamp(value)
	if result != "20240102_150405" {
		t.Fatalf("expected 20240102_150405, got %s", result)
	}
}

func TestIsFileNameTimestamp(t *testing.T) {
	testCases := map[string]bool{
		"20240102_150405": true,
		"20241302_150405": false,
		"dev":             false,
		"":                false,
	}
	for value, expected := range testCases {
		if actual := utils.IsFileNameTimestamp(value); actual != expected {
			t.Errorf("IsFileNameTimestamp(%q): expected %t, got %t", value, expected, actual)
		}
	}
}
