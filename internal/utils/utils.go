// Package utils contains general helper functions shared by the codedoc packages.
package utils

import (
	"path/filepath"
	"strings"
)

// File and directory names used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// IgnoreFileName is the name of the tool-neutral ignore file honored when configured.
	IgnoreFileName = ".ignore"
	// ConfigFileName is the name of the codedoc configuration file.
	ConfigFileName = ".codedoc.yaml"
	// GlobalConfigDirectoryName is the directory under the home directory holding the global configuration.
	GlobalConfigDirectoryName = ".codedoc"
	// DefaultOutputFileName is the report name used when no output path is configured.
	DefaultOutputFileName = "codebase_documentation.txt"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RelativePathOrSelf calculates the slash-separated relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// SplitRelativePath splits a relative path into its slash-separated segments.
// The root itself (".", "" or "/") yields no segments.
func SplitRelativePath(relativePath string) []string {
	normalizedPath := strings.Trim(strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator), pathSegmentSeparator)
	if normalizedPath == "" || normalizedPath == "." {
		return nil
	}
	return strings.Split(normalizedPath, pathSegmentSeparator)
}

// IsWithinDirectory reports whether absolutePath lies strictly below absoluteDirectory.
func IsWithinDirectory(absoluteDirectory, absolutePath string) bool {
	relativePath, relError := filepath.Rel(filepath.Clean(absoluteDirectory), filepath.Clean(absolutePath))
	if relError != nil || relativePath == "." {
		return false
	}
	return relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator))
}
