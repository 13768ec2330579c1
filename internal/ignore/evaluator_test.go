package ignore_test

import (
	"path/filepath"
	"testing"

	"github.com/temirov/codedoc/internal/ignore"
)

type ignoreCase struct {
	name        string
	path        string
	isDirectory bool
	expected    bool
}

func runIgnoreCases(t *testing.T, evaluator *ignore.Evaluator, testCases []ignoreCase) {
	t.Helper()
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			actual := evaluator.IsIgnored(testCase.path, testCase.isDirectory)
			if actual != testCase.expected {
				t.Fatalf("IsIgnored(%q, %t): expected %t, got %t", testCase.path, testCase.isDirectory, testCase.expected, actual)
			}
		})
	}
}

func TestEvaluatorRespectsLayeredRuleSets(t *testing.T) {
	ruleSets := []ignore.RuleSet{
		{BaseDirectory: ignore.RootDirectory, Patterns: []string{"# comment", "", "*.log", "out/", "/top.txt", "docs/**/draft.md"}},
		{BaseDirectory: "sub", Patterns: []string{"*.tmp", "!keep.log"}},
	}
	evaluator := ignore.NewEvaluator(ruleSets, ignore.Options{RespectRules: true})
	if evaluator.RuleCount() != 6 {
		t.Fatalf("expected 6 compiled rules, got %d", evaluator.RuleCount())
	}

	runIgnoreCases(t, evaluator, []ignoreCase{
		{name: "root_wildcard", path: "c.log", expected: true},
		{name: "root_wildcard_nested_path", path: "a/b/c.log", expected: true},
		{name: "plain_file", path: "a.py", expected: false},
		{name: "directory_only_directory", path: "out", isDirectory: true, expected: true},
		{name: "directory_only_file_with_same_name", path: "out", expected: false},
		{name: "directory_only_descendant", path: "out/report.txt", expected: true},
		{name: "anchored_at_root", path: "top.txt", expected: true},
		{name: "anchored_not_nested", path: "sub/top.txt", expected: false},
		{name: "double_star", path: "docs/a/b/draft.md", expected: true},
		{name: "double_star_other_file", path: "docs/a/b/final.md", expected: false},
		{name: "nested_rule_applies_below_base", path: "sub/x.tmp", expected: true},
		{name: "nested_rule_not_above_base", path: "x.tmp", expected: false},
		{name: "nested_rule_not_in_prefix_sibling", path: "subway/x.tmp", expected: false},
		{name: "nested_negation_wins", path: "sub/keep.log", expected: false},
		{name: "nested_negation_scoped", path: "keep.log", expected: true},
		{name: "root_rule_still_applies_in_nested", path: "sub/other.log", expected: true},
		{name: "root_is_never_ignored", path: ".", isDirectory: true, expected: false},
	})
}

func TestEvaluatorDenylistAlwaysApplies(t *testing.T) {
	ruleSets := []ignore.RuleSet{{BaseDirectory: ignore.RootDirectory, Patterns: []string{"!node_modules", "!.git"}}}
	for _, respectRules := range []bool{true, false} {
		evaluator := ignore.NewEvaluator(ruleSets, ignore.Options{RespectRules: respectRules})
		runIgnoreCases(t, evaluator, []ignoreCase{
			{name: "git_directory", path: ".git", isDirectory: true, expected: true},
			{name: "git_config", path: ".git/config", expected: true},
			{name: "node_modules_descendant", path: "web/node_modules/react/index.js", expected: true},
			{name: "minified_js", path: "static/app.min.js", expected: true},
			{name: "source_map", path: "static/app.js.map", expected: true},
			{name: "pycache", path: "pkg/__pycache__", isDirectory: true, expected: true},
			{name: "compiled_python", path: "pkg/mod.pyc", expected: true},
			{name: "build_directory", path: "build", isDirectory: true, expected: true},
			{name: "file_named_like_build_prefix", path: "build.go", expected: false},
			{name: "gitignore_file_is_not_git_dir", path: ".gitignore", expected: false},
			{name: "regular_js", path: "static/app.js", expected: false},
		})
	}
}

func TestEvaluatorUserRulesToggle(t *testing.T) {
	ruleSets := []ignore.RuleSet{{BaseDirectory: ignore.RootDirectory, Patterns: []string{"*.log"}}}

	respecting := ignore.NewEvaluator(ruleSets, ignore.Options{RespectRules: true})
	if !respecting.IsIgnored("c.log", false) {
		t.Fatalf("expected c.log to be ignored when rules are respected")
	}

	disregarding := ignore.NewEvaluator(ruleSets, ignore.Options{RespectRules: false})
	if disregarding.IsIgnored("c.log", false) {
		t.Fatalf("expected c.log to be included when rules are not respected")
	}
	if disregarding.RuleCount() != 0 {
		t.Fatalf("expected no compiled rules when rules are not respected, got %d", disregarding.RuleCount())
	}
}

func TestEvaluatorSelfExclusion(t *testing.T) {
	testCases := []struct {
		name     string
		options  ignore.Options
		path     string
		expected bool
	}{
		{name: "default_markdown_report", options: ignore.Options{RespectRules: true}, path: "codebase_documentation_20240101_120000.md", expected: true},
		{name: "default_text_report_nested", options: ignore.Options{RespectRules: true}, path: "docs/codebase_documentation.txt", expected: true},
		{name: "include_docs_disables", options: ignore.Options{RespectRules: true, IncludeDocs: true}, path: "codebase_documentation.txt", expected: false},
		{name: "not_respecting_rules_disables", options: ignore.Options{RespectRules: false}, path: "codebase_documentation.txt", expected: false},
		{name: "custom_report_timestamped", options: ignore.Options{RespectRules: true, ReportNames: []ignore.ReportName{{Directory: "out", FileName: "notes.md"}}}, path: "out/notes_20240101_120000.md", expected: true},
		{name: "custom_report_other_directory", options: ignore.Options{RespectRules: true, ReportNames: []ignore.ReportName{{Directory: "out", FileName: "notes.md"}}}, path: "notes_20240101_120000.md", expected: false},
		{name: "custom_report_other_extension", options: ignore.Options{RespectRules: true, ReportNames: []ignore.ReportName{{FileName: "notes.md"}}}, path: "notes.txt", expected: false},
		{name: "custom_report_include_docs", options: ignore.Options{RespectRules: true, IncludeDocs: true, ReportNames: []ignore.ReportName{{FileName: "notes.md"}}}, path: "notes.md", expected: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			evaluator := ignore.NewEvaluator(nil, testCase.options)
			actual := evaluator.IsIgnored(testCase.path, false)
			if actual != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, actual)
			}
		})
	}
}

func TestReportNameMatches(t *testing.T) {
	reportName := ignore.ReportName{FileName: "README.md"}
	testCases := []struct {
		name     string
		path     string
		expected bool
	}{
		{name: "exact_name", path: "README.md", expected: true},
		{name: "timestamped_name", path: "README_20240101_120000.md", expected: true},
		{name: "nested_same_name", path: "service/README.md", expected: false},
		{name: "shared_stem", path: "README_dev.md", expected: false},
		{name: "malformed_timestamp", path: "README_20241301_120000.md", expected: false},
		{name: "other_extension", path: "README_20240101_120000.txt", expected: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			if actual := reportName.Matches(testCase.path); actual != testCase.expected {
				t.Fatalf("Matches(%q): expected %t, got %t", testCase.path, testCase.expected, actual)
			}
		})
	}

	nested := ignore.ReportName{Directory: "docs/out", FileName: "notes"}
	if !nested.Matches("docs/out/notes_20240101_120000") {
		t.Fatalf("expected extensionless timestamped report to match")
	}
	if nested.Matches("docs/notes") {
		t.Fatalf("expected report in parent directory not to match")
	}
}

func TestNewReportName(t *testing.T) {
	rootDirectory := t.TempDir()
	testCases := []struct {
		name          string
		outputPath    string
		expected      ignore.ReportName
		expectedFound bool
	}{
		{name: "root_report", outputPath: filepath.Join(rootDirectory, "README.md"), expected: ignore.ReportName{FileName: "README.md"}, expectedFound: true},
		{name: "nested_report", outputPath: filepath.Join(rootDirectory, "docs", "out", "notes.md"), expected: ignore.ReportName{Directory: "docs/out", FileName: "notes.md"}, expectedFound: true},
		{name: "outside_root", outputPath: filepath.Join(filepath.Dir(rootDirectory), "notes.md"), expectedFound: false},
		{name: "root_itself", outputPath: rootDirectory, expectedFound: false},
		{name: "empty", outputPath: "", expectedFound: false},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			actual, found := ignore.NewReportName(rootDirectory, testCase.outputPath)
			if found != testCase.expectedFound {
				t.Fatalf("expected found %t, got %t", testCase.expectedFound, found)
			}
			if found && actual != testCase.expected {
				t.Fatalf("expected %+v, got %+v", testCase.expected, actual)
			}
		})
	}
}

func TestNilEvaluatorIgnoresNothing(t *testing.T) {
	var evaluator *ignore.Evaluator
	if evaluator.IsIgnored("main.go", false) {
		t.Fatalf("expected nil evaluator to include files")
	}
	if evaluator.IsIgnored(".git", true) {
		t.Fatalf("expected nil evaluator to include directories")
	}
	if evaluator.RuleCount() != 0 {
		t.Fatalf("expected nil evaluator to report no rules, got %d", evaluator.RuleCount())
	}
}
