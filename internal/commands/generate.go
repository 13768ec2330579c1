package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/codedoc/internal/config"
	"github.com/temirov/codedoc/internal/ignore"
	"github.com/temirov/codedoc/internal/output"
	"github.com/temirov/codedoc/internal/types"
	"github.com/temirov/codedoc/internal/utils"
)

const (
	errorLoadRuleSetsFormat = "loading ignore rules: %w"
	errorWriteHeaderFormat  = "writing report header: %v"
	errorCloseReportFormat  = "closing report: %v"
)

// GenerateOptions configures a full report run.
type GenerateOptions struct {
	RootDirectory string
	OutputPath    string
	// ReportName is the configured output name before timestamping, relative to
	// RootDirectory or absolute. Earlier reports with this name or a timestamped
	// variant of it in the same directory are excluded. Defaults to OutputPath.
	ReportName      string
	RespectRules    bool
	IncludeDocs     bool
	IgnoreFileNames []string
	ExcludePatterns []string
	// Report carries the writer options; its Evaluator and StartedAt are set by Generate.
	Report ReportOptions
}

// Generate walks the root, writes the header and file sections to the output
// path and returns the outcome. The output file is flushed and closed for
// every outcome. The returned error covers failures that prevent the report
// from being started.
func Generate(ctx context.Context, options GenerateOptions) (types.Outcome, error) {
	clock := options.Report.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := options.Report.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	startedAt := clock()

	absoluteRootPath, absolutePathError := filepath.Abs(options.RootDirectory)
	if absolutePathError != nil {
		return types.Outcome{}, fmt.Errorf(errorAbsolutePathFormat, options.RootDirectory, absolutePathError)
	}
	absoluteOutputPath, absolutePathError := filepath.Abs(options.OutputPath)
	if absolutePathError != nil {
		return types.Outcome{}, fmt.Errorf(errorAbsolutePathFormat, options.OutputPath, absolutePathError)
	}

	evaluator, evaluatorError := BuildEvaluator(absoluteRootPath, absoluteOutputPath, options)
	if evaluatorError != nil {
		return types.Outcome{}, evaluatorError
	}
	logger.Debug("ignore rules loaded", zap.Int("patterns", evaluator.RuleCount()), zap.Bool("respect_rules", options.RespectRules))

	walker := TreeWalker{Evaluator: evaluator, Logger: logger}
	listing, walkError := walker.Walk(absoluteRootPath)
	if walkError != nil {
		return types.Outcome{}, walkError
	}
	logger.Debug("directory tree generated", zap.Int("lines", len(listing.Lines)), zap.Int("files", len(listing.Files)))

	reportFile, createError := output.CreateReportFile(absoluteOutputPath)
	if createError != nil {
		return types.Outcome{}, createError
	}

	var outcome types.Outcome
	if headerError := output.WriteHeader(reportFile, listing.Lines); headerError != nil {
		outcome = types.Outcome{Status: types.OutcomeError, Message: fmt.Sprintf(errorWriteHeaderFormat, headerError), Elapsed: clock().Sub(startedAt)}
	} else {
		reportOptions := options.Report
		reportOptions.Evaluator = evaluator
		reportOptions.StartedAt = startedAt
		reportOptions.Clock = clock
		reportOptions.Logger = logger
		outcome = WriteReport(ctx, reportFile, listing.Files, reportOptions)
	}

	if closeError := reportFile.Close(); closeError != nil && outcome.Status != types.OutcomeError {
		outcome.Status = types.OutcomeError
		outcome.Message = fmt.Sprintf(errorCloseReportFormat, closeError)
	}
	return outcome, nil
}

// BuildEvaluator loads the rule sets below the root and compiles them into an
// evaluator that also excludes the report being written.
func BuildEvaluator(absoluteRootPath, absoluteOutputPath string, options GenerateOptions) (*OutputAwareEvaluator, error) {
	var ruleSets []ignore.RuleSet
	if options.RespectRules {
		loadedRuleSets, loadError := config.LoadRuleSets(absoluteRootPath, config.RuleSetLoadOptions{
			IgnoreFileNames: options.IgnoreFileNames,
			ExcludePatterns: options.ExcludePatterns,
		})
		if loadError != nil {
			return nil, fmt.Errorf(errorLoadRuleSetsFormat, loadError)
		}
		ruleSets = loadedRuleSets
	}
	configuredReportName := options.ReportName
	if configuredReportName == "" {
		configuredReportName = absoluteOutputPath
	}
	var reportNames []ignore.ReportName
	if reportName, insideRoot := ignore.NewReportName(absoluteRootPath, configuredReportName); insideRoot {
		reportNames = append(reportNames, reportName)
	}
	evaluator := ignore.NewEvaluator(ruleSets, ignore.Options{
		RespectRules: options.RespectRules,
		IncludeDocs:  options.IncludeDocs,
		ReportNames:  reportNames,
	})
	outputRelativePath := ""
	if utils.IsWithinDirectory(absoluteRootPath, absoluteOutputPath) {
		outputRelativePath = utils.RelativePathOrSelf(absoluteOutputPath, absoluteRootPath)
	}
	return &OutputAwareEvaluator{Evaluator: evaluator, OutputRelativePath: outputRelativePath}, nil
}

// OutputAwareEvaluator additionally ignores the report file being written so
// a run never reads its own partial output.
type OutputAwareEvaluator struct {
	*ignore.Evaluator
	OutputRelativePath string
}

// IsIgnored implements Evaluator.
func (evaluator *OutputAwareEvaluator) IsIgnored(relativePath string, isDirectory bool) bool {
	if !isDirectory && evaluator.OutputRelativePath != "" && relativePath == evaluator.OutputRelativePath {
		return true
	}
	return evaluator.Evaluator.IsIgnored(relativePath, isDirectory)
}
