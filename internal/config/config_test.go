package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/codedoc/internal/ignore"
	"github.com/temirov/codedoc/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create directory for %s: %v", filePath, makeDirError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// TestLoadIgnoreFilePatternsSkipsCommentsAndBlanks verifies ignore file parsing.
func TestLoadIgnoreFilePatternsSkipsCommentsAndBlanks(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	ignoreFilePath := filepath.Join(rootDirectory, utils.GitIgnoreFileName)
	writeTestFile(testingHandle, ignoreFilePath, "# build output\n\n*.log\n  dist/  \n!keep.log\n")

	patterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
	if loadError != nil {
		testingHandle.Fatalf("LoadIgnoreFilePatterns failed: %v", loadError)
	}
	expected := []string{"*.log", "dist/", "!keep.log"}
	if !reflect.DeepEqual(patterns, expected) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", patterns, expected)
	}

	missingPatterns, missingError := LoadIgnoreFilePatterns(filepath.Join(rootDirectory, "missing"))
	if missingError != nil || missingPatterns != nil {
		testingHandle.Fatalf("expected no patterns and no error for a missing file, got %v, %v", missingPatterns, missingError)
	}
}

// TestLoadRuleSetsCollectsNestedIgnoreFiles verifies root and nested rule set aggregation.
func TestLoadRuleSetsCollectsNestedIgnoreFiles(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.GitIgnoreFileName), "*.log\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "api", utils.GitIgnoreFileName), "*.tmp\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "api", "internal", utils.GitIgnoreFileName), "!keep.tmp\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "web", utils.IgnoreFileName), "coverage/\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, "node_modules", "pkg", utils.GitIgnoreFileName), "*.js\n")

	ruleSets, loadError := LoadRuleSets(rootDirectory, RuleSetLoadOptions{ExcludePatterns: []string{"vendor/", " ", "*.log"}})
	if loadError != nil {
		testingHandle.Fatalf("LoadRuleSets failed: %v", loadError)
	}

	expected := []ignore.RuleSet{
		{BaseDirectory: ignore.RootDirectory, Patterns: []string{"*.log", "vendor/"}},
		{BaseDirectory: "api", Patterns: []string{"*.tmp"}},
		{BaseDirectory: "api/internal", Patterns: []string{"!keep.tmp"}},
	}
	if !reflect.DeepEqual(ruleSets, expected) {
		testingHandle.Fatalf("unexpected rule sets: got %+v want %+v", ruleSets, expected)
	}
}

// TestLoadRuleSetsHonorsConfiguredFileNames verifies that additional ignore file names are read.
func TestLoadRuleSetsHonorsConfiguredFileNames(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.GitIgnoreFileName), "*.log\n")
	writeTestFile(testingHandle, filepath.Join(rootDirectory, utils.IgnoreFileName), "*.bak\n")

	ruleSets, loadError := LoadRuleSets(rootDirectory, RuleSetLoadOptions{IgnoreFileNames: []string{utils.GitIgnoreFileName, utils.IgnoreFileName}})
	if loadError != nil {
		testingHandle.Fatalf("LoadRuleSets failed: %v", loadError)
	}
	if len(ruleSets) != 1 {
		testingHandle.Fatalf("expected only the root rule set, got %+v", ruleSets)
	}
	expectedPatterns := []string{"*.log", "*.bak"}
	if !reflect.DeepEqual(ruleSets[0].Patterns, expectedPatterns) {
		testingHandle.Fatalf("unexpected root patterns: got %v want %v", ruleSets[0].Patterns, expectedPatterns)
	}
}

// TestLoadRuleSetsMissingRoot verifies that an absent root is reported.
func TestLoadRuleSetsMissingRoot(testingHandle *testing.T) {
	missingRoot := filepath.Join(testingHandle.TempDir(), "absent")
	if _, loadError := LoadRuleSets(missingRoot, RuleSetLoadOptions{}); loadError == nil {
		testingHandle.Fatalf("expected an error for a missing root directory")
	}
}
