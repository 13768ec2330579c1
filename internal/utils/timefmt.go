package utils

import (
	"time"
)

const fileNameTimestampLayout = "20060102_150405"

// FormatFileNameTimestamp returns the provided time in the local time zone using a
// layout safe for file names, e.g. 20240102_150405.
func FormatFileNameTimestamp(value time.Time) string {
	return value.In(time.Local).Format(fileNameTimestampLayout)
}

// IsFileNameTimestamp reports whether value has the layout produced by FormatFileNameTimestamp.
func IsFileNameTimestamp(value string) bool {
	_, parseError := time.Parse(fileNameTimestampLayout, value)
	return parseError == nil
}
