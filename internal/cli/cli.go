// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/codedoc/internal/commands"
	"github.com/temirov/codedoc/internal/config"
	"github.com/temirov/codedoc/internal/ignore"
	"github.com/temirov/codedoc/internal/language"
	"github.com/temirov/codedoc/internal/output"
	"github.com/temirov/codedoc/internal/progress"
	"github.com/temirov/codedoc/internal/services/clipboard"
	"github.com/temirov/codedoc/internal/services/gitstage"
	"github.com/temirov/codedoc/internal/services/watch"
	"github.com/temirov/codedoc/internal/tokenizer"
	"github.com/temirov/codedoc/internal/types"
	"github.com/temirov/codedoc/internal/utils"
)

const (
	versionFlagName       = "version"
	verboseFlagName       = "verbose"
	configFlagName        = "config"
	globalFlagName        = "global"
	forceFlagName         = "force"
	versionTemplate       = "codedoc version: %s\n"
	reportWrittenTemplate = "Report written to %s\n"
	configWrittenTemplate = "Configuration written to %s\n"
	defaultPath           = "."
	rootUse               = "codedoc [path]"
	rootShortDescription  = "document a codebase as a single Markdown report"
	rootLongDescription   = `codedoc walks a directory, honours its ignore files and writes one Markdown
report holding the directory tree followed by the content of every included file.
The report is written to the root directory unless --output-file names another location.`
	rootUsageExample = `  # Document the current directory
  codedoc

  # Write a fixed file name and skip files over 256 KB
  codedoc ./service --output-file docs.md --no-timestamp --skip-large-files --max-file-size 262144

  # Copy the report to the clipboard and count tokens
  codedoc --copy --tokens`
	watchUse              = "watch [path]"
	watchShortDescription = "regenerate the report whenever files change"
	watchLongDescription  = `Generate the report once and again after every burst of changes.
A run starts after --debounce without further changes and never sooner than
--min-interval after the previous run. Ignored paths and earlier reports do not trigger runs.`
	initUse              = "init"
	initShortDescription = "write a default configuration file"
	initLongDescription  = `Write a .codedoc.yaml populated with the default settings to the
current directory, or to ~/.codedoc with --global.`

	versionFlagDescription = "display application version"
	verboseFlagDescription = "enable debug logging"
	configFlagDescription  = "path to a configuration file used instead of ./.codedoc.yaml"
	globalFlagDescription  = "write the configuration to the home directory"
	forceFlagDescription   = "overwrite an existing configuration file"

	errorTimeoutNegativeFormat = "--%s must not be negative: %d"
	errorMaxFileSizeFormat     = "--%s must be positive: %d"
	errorResolveOutputFormat   = "resolve output path: %w"
	errorLanguageTableFormat   = "load language table: %w"
	errorTokenizerFormat       = "initialize tokenizer: %w"
	errorGenerationFormat      = "%s: %w"
	errorWatchEvaluatorFormat  = "build watch filter: %w"
	errorLoggerFormat          = "initialize logger: %w"
	warningClipboardMessage    = "unable to copy report to clipboard"
	warningCommitMessage       = "unable to stage report"
	infoClipboardMessage       = "report copied to clipboard"
	infoCommitMessage          = "report staged"
	infoWatchingMessage        = "watching for changes"
	debugSettingsMessage       = "resolved settings"
)

var (
	// ErrGenerationTimedOut indicates the report ran out of its time budget.
	ErrGenerationTimedOut = errors.New("report generation timed out")
	// ErrGenerationFailed indicates the report ended with an error outcome.
	ErrGenerationFailed = errors.New("report generation failed")

	errVersionDisplayed = errors.New("version displayed")
)

// ReportStager stages a finished report in version control.
type ReportStager interface {
	Stage(filePath string) (string, error)
}

// Dependencies carries the collaborators of the command tree. Nil fields are
// replaced by the production implementations.
type Dependencies struct {
	Logger *zap.Logger
	Copier clipboard.Copier
	Stager ReportStager
	Clock  func() time.Time
	Output io.Writer
}

type applicationRunner struct {
	dependencies      Dependencies
	logger            *zap.Logger
	configurationPath string
	verbose           bool
	showVersion       bool
}

// Execute runs the codedoc application until ctx is cancelled.
func Execute(ctx context.Context) error {
	rootCommand := createRootCommand(Dependencies{})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	executeError := rootCommand.ExecuteContext(ctx)
	if errors.Is(executeError, errVersionDisplayed) {
		return nil
	}
	return executeError
}

// createRootCommand builds the root Cobra command. Running it without a
// subcommand generates a report.
func createRootCommand(dependencies Dependencies) *cobra.Command {
	application := &applicationRunner{dependencies: dependencies}
	var flags generateFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.prepare(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runGenerate(command, arguments, &flags)
		},
	}
	flags.register(rootCommand)
	rootCommand.PersistentFlags().BoolVar(&application.showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &application.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&application.configurationPath, configFlagName, "", configFlagDescription)
	rootCommand.AddCommand(
		application.createWatchCommand(),
		application.createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func (application *applicationRunner) createWatchCommand() *cobra.Command {
	var flags generateFlags
	var intervals watchFlags
	watchCommand := &cobra.Command{
		Use:   watchUse,
		Short: watchShortDescription,
		Long:  watchLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runWatch(command, arguments, &flags, &intervals)
		},
	}
	flags.register(watchCommand)
	intervals.register(watchCommand)
	return watchCommand
}

func (application *applicationRunner) createInitCommand() *cobra.Command {
	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(application.output(command), configWrittenTemplate, writtenPath)
			return printError
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// prepare handles --version and builds the logger once flags are parsed.
func (application *applicationRunner) prepare(command *cobra.Command) error {
	if application.showVersion {
		workingDirectory, _ := os.Getwd()
		if _, printError := fmt.Fprintf(application.output(command), versionTemplate, utils.GetApplicationVersion(workingDirectory)); printError != nil {
			return printError
		}
		return errVersionDisplayed
	}
	if application.dependencies.Logger != nil {
		application.logger = application.dependencies.Logger
		return nil
	}
	logger, loggerError := utils.NewApplicationLogger(application.verbose)
	if loggerError != nil {
		return fmt.Errorf(errorLoggerFormat, loggerError)
	}
	application.logger = logger
	return nil
}

func (application *applicationRunner) output(command *cobra.Command) io.Writer {
	if application.dependencies.Output != nil {
		return application.dependencies.Output
	}
	return command.OutOrStdout()
}

func (application *applicationRunner) clock() func() time.Time {
	if application.dependencies.Clock != nil {
		return application.dependencies.Clock
	}
	return time.Now
}

func (application *applicationRunner) loadConfiguration() (config.ApplicationConfiguration, error) {
	return config.LoadApplicationConfiguration(config.LoadOptions{ExplicitFilePath: application.configurationPath})
}

// resolveGenerateSettings layers explicitly set flags over the loaded configuration.
func (application *applicationRunner) resolveGenerateSettings(command *cobra.Command, flags *generateFlags) (config.ApplicationConfiguration, config.GenerateSettings, error) {
	configuration, loadError := application.loadConfiguration()
	if loadError != nil {
		return config.ApplicationConfiguration{}, config.GenerateSettings{}, loadError
	}
	settings := flags.apply(command, configuration.Generate.Resolve())
	settings.Exclude = utils.DeduplicatePatterns(settings.Exclude)
	if settings.Timeout < 0 {
		return config.ApplicationConfiguration{}, config.GenerateSettings{}, fmt.Errorf(errorTimeoutNegativeFormat, timeoutFlagName, int(settings.Timeout/time.Second))
	}
	if settings.MaxFileSizeBytes <= 0 {
		return config.ApplicationConfiguration{}, config.GenerateSettings{}, fmt.Errorf(errorMaxFileSizeFormat, maxFileSizeFlagName, settings.MaxFileSizeBytes)
	}
	application.logger.Debug(debugSettingsMessage,
		zap.String("output", settings.OutputPath),
		zap.Duration("timeout", settings.Timeout),
		zap.Bool("respect_ignore_rules", settings.RespectIgnoreRules),
		zap.Bool("include_docs", settings.IncludeDocs),
		zap.Strings("exclude", settings.Exclude),
	)
	return configuration, settings, nil
}

func (application *applicationRunner) runGenerate(command *cobra.Command, arguments []string, flags *generateFlags) error {
	_, settings, settingsError := application.resolveGenerateSettings(command, flags)
	if settingsError != nil {
		return settingsError
	}
	return application.generate(command.Context(), application.output(command), rootArgument(arguments), settings)
}

func (application *applicationRunner) runWatch(command *cobra.Command, arguments []string, flags *generateFlags, intervals *watchFlags) error {
	configuration, settings, settingsError := application.resolveGenerateSettings(command, flags)
	if settingsError != nil {
		return settingsError
	}
	watchSettings := intervals.apply(command, configuration.Watch.Resolve())
	rootDirectory := rootArgument(arguments)
	absoluteRoot, absoluteError := filepath.Abs(rootDirectory)
	if absoluteError != nil {
		return absoluteError
	}

	evaluator, evaluatorError := commands.BuildEvaluator(absoluteRoot, "", commands.GenerateOptions{
		ReportName:      settings.OutputPath,
		RespectRules:    settings.RespectIgnoreRules,
		IncludeDocs:     settings.IncludeDocs,
		IgnoreFileNames: settings.IgnoreFiles,
		ExcludePatterns: settings.Exclude,
	})
	if evaluatorError != nil {
		return fmt.Errorf(errorWatchEvaluatorFormat, evaluatorError)
	}
	reportName, reportInsideRoot := ignore.NewReportName(absoluteRoot, settings.OutputPath)
	stdout := application.output(command)

	watcher, watcherError := watch.NewWatcher(watch.Config{
		RootDirectory: absoluteRoot,
		Debounce:      watchSettings.Debounce,
		MinInterval:   watchSettings.MinInterval,
		Ignore: func(relativePath string, isDirectory bool) bool {
			if evaluator.IsIgnored(relativePath, isDirectory) {
				return true
			}
			return reportInsideRoot && !isDirectory && reportName.Matches(relativePath)
		},
		Regenerate: func(ctx context.Context) error {
			return application.generate(ctx, stdout, absoluteRoot, settings)
		},
		Logger: application.logger,
		Clock:  application.clock(),
	})
	if watcherError != nil {
		return watcherError
	}
	application.logger.Info(infoWatchingMessage,
		zap.String("root", absoluteRoot),
		zap.Duration("debounce", watchSettings.Debounce),
		zap.Duration("min_interval", watchSettings.MinInterval),
	)
	return watcher.Run(command.Context())
}

// generate runs one report, prints its summary line and performs the
// clipboard and staging follow-ups after a successful run.
func (application *applicationRunner) generate(ctx context.Context, stdout io.Writer, rootDirectory string, settings config.GenerateSettings) error {
	if ctx == nil {
		ctx = context.Background()
	}
	outputPath, resolveError := output.ResolvePath(output.PathOptions{
		RootDirectory: rootDirectory,
		FileName:      settings.OutputPath,
		Timestamp:     settings.Timestamp,
		Clock:         application.clock(),
	})
	if resolveError != nil {
		return fmt.Errorf(errorResolveOutputFormat, resolveError)
	}
	languages, languageError := language.NewTable(settings.Languages)
	if languageError != nil {
		return fmt.Errorf(errorLanguageTableFormat, languageError)
	}

	reportOptions := commands.ReportOptions{
		Timeout:          settings.Timeout,
		SkipLargeFiles:   settings.SkipLargeFiles,
		MaxFileSizeBytes: settings.MaxFileSizeBytes,
		Languages:        languages,
		Progress:         progress.NewReporter(settings.Progress, application.logger),
		Logger:           application.logger,
		Clock:            application.clock(),
	}
	if settings.TokensEnabled {
		counter, modelLabel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: settings.TokenModel})
		if counterError != nil {
			return fmt.Errorf(errorTokenizerFormat, counterError)
		}
		reportOptions.TokenCounter = counter
		reportOptions.TokenModel = modelLabel
	}

	outcome, generateError := commands.Generate(ctx, commands.GenerateOptions{
		RootDirectory:   rootDirectory,
		OutputPath:      outputPath,
		ReportName:      settings.OutputPath,
		RespectRules:    settings.RespectIgnoreRules,
		IncludeDocs:     settings.IncludeDocs,
		IgnoreFileNames: settings.IgnoreFiles,
		ExcludePatterns: settings.Exclude,
		Report:          reportOptions,
	})
	if generateError != nil {
		return generateError
	}
	if _, printError := fmt.Fprintln(stdout, outcome.String()); printError != nil {
		return printError
	}

	switch outcome.Status {
	case types.OutcomeTimeout:
		return fmt.Errorf(errorGenerationFormat, outputPath, ErrGenerationTimedOut)
	case types.OutcomeError:
		return fmt.Errorf(errorGenerationFormat, outcome.Message, ErrGenerationFailed)
	}
	if _, printError := fmt.Fprintf(stdout, reportWrittenTemplate, outputPath); printError != nil {
		return printError
	}
	application.followUp(outputPath, settings)
	return nil
}

// followUp copies and stages a finished report. Failures are logged and do
// not fail the run.
func (application *applicationRunner) followUp(reportPath string, settings config.GenerateSettings) {
	if settings.Clipboard {
		copier := application.dependencies.Copier
		if copier == nil {
			copier = clipboard.NewService()
		}
		if copiedBytes, copyError := clipboard.CopyFile(copier, reportPath); copyError != nil {
			application.logger.Warn(warningClipboardMessage, zap.Error(copyError))
		} else {
			application.logger.Info(infoClipboardMessage, zap.String("size", utils.FormatFileSize(int64(copiedBytes))))
		}
	}
	if settings.Commit {
		var stager ReportStager = application.dependencies.Stager
		if stager == nil {
			stager = gitstage.NewStager(application.logger)
		}
		if stagedPath, stageError := stager.Stage(reportPath); stageError != nil {
			application.logger.Warn(warningCommitMessage, zap.String("path", reportPath), zap.Error(stageError))
		} else {
			application.logger.Info(infoCommitMessage, zap.String("path", stagedPath))
		}
	}
}

func rootArgument(arguments []string) string {
	if len(arguments) == 0 || arguments[0] == "" {
		return defaultPath
	}
	return arguments[0]
}
