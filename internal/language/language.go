// Package language maps file names to Markdown code-fence tags.
package language

import (
	_ "embed"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed languages.yaml
var embeddedLanguageTable []byte

type languageDefinitions struct {
	Extensions map[string]string `yaml:"extensions"`
	Filenames  map[string]string `yaml:"filenames"`
}

// Table resolves fence tags from file extensions and extensionless file names.
type Table struct {
	extensionTags map[string]string
	filenameTags  map[string]string
}

// NewTable parses the embedded table and applies overrides keyed by extension.
// Override keys may carry a leading dot and any letter case.
func NewTable(overrides map[string]string) (*Table, error) {
	var definitions languageDefinitions
	if err := yaml.Unmarshal(embeddedLanguageTable, &definitions); err != nil {
		return nil, fmt.Errorf("parse embedded language table: %w", err)
	}
	table := &Table{
		extensionTags: make(map[string]string, len(definitions.Extensions)+len(overrides)),
		filenameTags:  make(map[string]string, len(definitions.Filenames)),
	}
	for extension, tag := range definitions.Extensions {
		table.extensionTags[normalizeExtension(extension)] = tag
	}
	for fileName, tag := range definitions.Filenames {
		table.filenameTags[strings.ToLower(fileName)] = tag
	}
	for extension, tag := range overrides {
		normalized := normalizeExtension(extension)
		if normalized == "" {
			continue
		}
		table.extensionTags[normalized] = strings.TrimSpace(tag)
	}
	return table, nil
}

// Default returns the embedded table without overrides.
func Default() *Table {
	table, err := NewTable(nil)
	if err != nil {
		panic(err)
	}
	return table
}

// Tag returns the fence tag for a slash-separated path, or "" when unknown.
func (table *Table) Tag(filePath string) string {
	baseName := strings.ToLower(path.Base(strings.ReplaceAll(filePath, "\\", "/")))
	extension := normalizeExtension(path.Ext(baseName))
	if extension != "" {
		return table.extensionTags[extension]
	}
	return table.filenameTags[baseName]
}

func normalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
}
