package language_test

import (
	"testing"

	"github.com/temirov/codedoc/internal/language"
)

func TestDefaultTableTags(t *testing.T) {
	table := language.Default()
	testCases := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "python", path: "src/a.py", expected: "python"},
		{name: "upper case extension", path: "Main.GO", expected: "go"},
		{name: "shell maps to bash", path: "scripts/run.sh", expected: "bash"},
		{name: "markdown", path: "README.md", expected: "markdown"},
		{name: "dotfile suffix", path: ".gitignore", expected: "gitignore"},
		{name: "env file", path: "config/.env", expected: "env"},
		{name: "dockerfile by name", path: "deploy/Dockerfile", expected: "dockerfile"},
		{name: "unknown extension", path: "notes.adoc", expected: ""},
		{name: "no extension", path: "Makefile", expected: ""},
		{name: "windows separators", path: "src\\lib\\util.ts", expected: "typescript"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if tag := table.Tag(testCase.path); tag != testCase.expected {
				t.Fatalf("Tag(%q) = %q, want %q", testCase.path, tag, testCase.expected)
			}
		})
	}
}

func TestOverridesExtendAndReplace(t *testing.T) {
	table, err := language.NewTable(map[string]string{".TPL": "handlebars", "txt": "plaintext", "": "ignored"})
	if err != nil {
		t.Fatalf("NewTable error: %v", err)
	}
	if tag := table.Tag("views/index.tpl"); tag != "handlebars" {
		t.Fatalf("expected override for .tpl, got %q", tag)
	}
	if tag := table.Tag("notes.txt"); tag != "plaintext" {
		t.Fatalf("expected replaced tag for .txt, got %q", tag)
	}
	if tag := table.Tag("main.py"); tag != "python" {
		t.Fatalf("expected embedded tag to survive overrides, got %q", tag)
	}
}
