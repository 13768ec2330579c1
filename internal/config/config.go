// Package config loads ignore files into rule sets and reads the application configuration.
package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/codedoc/internal/ignore"
	"github.com/temirov/codedoc/internal/utils"
)

const (
	errorLoadIgnoreFileFormat = "loading %s from %s: %w"
	errorWalkRootFormat       = "walking %s for ignore files: %w"
	commentPrefix             = "#"
)

// RuleSetLoadOptions controls which ignore files are read while collecting rule sets.
type RuleSetLoadOptions struct {
	// IgnoreFileNames lists the file names read in every directory, e.g. ".gitignore".
	IgnoreFileNames []string
	// ExcludePatterns are appended to the root rule set.
	ExcludePatterns []string
}

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns without blank lines
// and comments. A missing file yields no patterns and no error.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRuleSets walks rootDirectoryPath and returns one rule set per directory that holds
// at least one of the configured ignore files. The root rule set always comes first and
// carries the exclude patterns; nested rule sets follow in lexical walk order, so a
// deeper ignore file takes precedence over its ancestors. Directories on the built-in
// denylist are not descended and unreadable subdirectories are skipped.
func LoadRuleSets(rootDirectoryPath string, options RuleSetLoadOptions) ([]ignore.RuleSet, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf("getting absolute path for %s: %w", rootDirectoryPath, absolutePathError)
	}
	ignoreFileNames := options.IgnoreFileNames
	if len(ignoreFileNames) == 0 {
		ignoreFileNames = []string{utils.GitIgnoreFileName}
	}

	denylistOnly := ignore.NewEvaluator(nil, ignore.Options{})
	rootRuleSet := ignore.RuleSet{BaseDirectory: ignore.RootDirectory}
	var nestedRuleSets []ignore.RuleSet

	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentDirectoryPath == absoluteRootPath {
				return walkError
			}
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, absoluteRootPath)
		if relativeDirectory != "." && denylistOnly.IsIgnored(relativeDirectory, true) {
			return filepath.SkipDir
		}

		var directoryPatterns []string
		for _, ignoreFileName := range utils.DeduplicatePatterns(ignoreFileNames) {
			ignoreFilePath := filepath.Join(currentDirectoryPath, ignoreFileName)
			filePatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
			if loadError != nil {
				return fmt.Errorf(errorLoadIgnoreFileFormat, ignoreFileName, currentDirectoryPath, loadError)
			}
			directoryPatterns = append(directoryPatterns, filePatterns...)
		}

		if relativeDirectory == "." {
			rootRuleSet.Patterns = append(rootRuleSet.Patterns, directoryPatterns...)
			return nil
		}
		if len(directoryPatterns) > 0 {
			nestedRuleSets = append(nestedRuleSets, ignore.RuleSet{BaseDirectory: relativeDirectory, Patterns: directoryPatterns})
		}
		return nil
	}

	if walkError := filepath.WalkDir(absoluteRootPath, walkFunction); walkError != nil {
		return nil, fmt.Errorf(errorWalkRootFormat, absoluteRootPath, walkError)
	}

	for _, pattern := range options.ExcludePatterns {
		trimmedPattern := strings.TrimSpace(pattern)
		if trimmedPattern == "" {
			continue
		}
		if !utils.ContainsString(rootRuleSet.Patterns, trimmedPattern) {
			rootRuleSet.Patterns = append(rootRuleSet.Patterns, trimmedPattern)
		}
	}

	return append([]ignore.RuleSet{rootRuleSet}, nestedRuleSets...), nil
}
