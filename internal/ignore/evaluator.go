// Package ignore decides whether paths below a project root are excluded from the report.
//
// Three layers are consulted in order: the user rule sets loaded from ignore files
// (root and nested, layered with gitignore semantics), the built-in denylist, and the
// self-exclusion of previously generated reports. The first layer that ignores a path wins.
package ignore

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	gitignorelines "github.com/sabhiram/go-gitignore"

	"github.com/temirov/codedoc/internal/utils"
)

const (
	commentPrefix = "#"
	// RootDirectory is the base directory of the root rule set.
	RootDirectory = ""
)

// RuleSet holds the patterns of one ignore file, scoped to its containing directory.
// BaseDirectory is slash-separated and relative to the walk root; the root itself is "".
type RuleSet struct {
	BaseDirectory string
	Patterns      []string
}

// Options controls which layers an Evaluator consults.
type Options struct {
	// RespectRules enables the user rule sets and the self-exclusion layer.
	RespectRules bool
	// IncludeDocs disables the self-exclusion of generated reports.
	IncludeDocs bool
	// ReportNames are reports of the current output name, excluded with their timestamped copies.
	ReportNames []ReportName
}

// Evaluator answers whether a path relative to the walk root is ignored.
// It is immutable after construction and safe for concurrent use.
type Evaluator struct {
	respectRules  bool
	userMatcher   gitignore.Matcher
	userRuleCount int
	denylist      *gitignorelines.GitIgnore
	selfExclusion *gitignorelines.GitIgnore
	reportNames   []ReportName
}

// NewEvaluator compiles the rule sets into an Evaluator.
// Rule sets are layered in the given order; later sets take precedence over earlier ones,
// so callers pass the root set first and nested sets in traversal order.
func NewEvaluator(ruleSets []RuleSet, options Options) *Evaluator {
	evaluator := &Evaluator{
		respectRules: options.RespectRules,
		denylist:     compileLines(builtInDenylistPatterns),
	}

	if options.RespectRules {
		var compiledPatterns []gitignore.Pattern
		for _, ruleSet := range ruleSets {
			domain := utils.SplitRelativePath(ruleSet.BaseDirectory)
			for _, pattern := range ruleSet.Patterns {
				trimmedPattern := strings.TrimSpace(pattern)
				if trimmedPattern == "" || strings.HasPrefix(trimmedPattern, commentPrefix) {
					continue
				}
				compiledPatterns = append(compiledPatterns, gitignore.ParsePattern(trimmedPattern, domain))
			}
		}
		evaluator.userMatcher = gitignore.NewMatcher(compiledPatterns)
		evaluator.userRuleCount = len(compiledPatterns)

		if !options.IncludeDocs {
			evaluator.selfExclusion = compileLines(GeneratedReportPatterns())
			evaluator.reportNames = append([]ReportName(nil), options.ReportNames...)
		}
	}

	return evaluator
}

// IsIgnored reports whether relativePath must be left out of the report.
// The root itself is never ignored. A nil Evaluator ignores nothing.
func (evaluator *Evaluator) IsIgnored(relativePath string, isDirectory bool) bool {
	if evaluator == nil {
		return false
	}
	pathSegments := utils.SplitRelativePath(relativePath)
	if len(pathSegments) == 0 {
		return false
	}
	normalizedPath := strings.Join(pathSegments, "/")

	if evaluator.respectRules && evaluator.userRuleCount > 0 && evaluator.userMatcher.Match(pathSegments, isDirectory) {
		return true
	}
	if evaluator.denylist != nil && evaluator.denylist.MatchesPath(normalizedPath) {
		return true
	}
	if evaluator.selfExclusion != nil && evaluator.selfExclusion.MatchesPath(pathSegments[len(pathSegments)-1]) {
		return true
	}
	if !isDirectory {
		for _, reportName := range evaluator.reportNames {
			if reportName.Matches(normalizedPath) {
				return true
			}
		}
	}
	return false
}

// RuleCount returns the number of compiled user patterns.
func (evaluator *Evaluator) RuleCount() int {
	if evaluator == nil {
		return 0
	}
	return evaluator.userRuleCount
}
