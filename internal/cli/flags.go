package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/codedoc/internal/config"
)

const (
	booleanFlagTypeName               = "bool"
	booleanFlagTrueLiteral            = "true"
	booleanFlagAcceptedValuesListing  = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidValueErrorLabel = "invalid boolean value"

	outputFileFlagName     = "output-file"
	noTimestampFlagName    = "no-timestamp"
	timeoutFlagName        = "timeout"
	skipLargeFilesFlagName = "skip-large-files"
	maxFileSizeFlagName    = "max-file-size"
	includeDocsFlagName    = "include-docs"
	noIgnoreFlagName       = "no-ignore"
	excludeFlagName        = "exclude"
	excludeFlagShorthand   = "e"
	ignoreFileFlagName     = "ignore-file"
	copyFlagName           = "copy"
	commitFlagName         = "commit"
	tokensFlagName         = "tokens"
	modelFlagName          = "model"
	progressFlagName       = "progress"
	debounceFlagName       = "debounce"
	minIntervalFlagName    = "min-interval"

	outputFileFlagDescription     = "output file name, placed in the root directory when relative"
	noTimestampFlagDescription    = "do not add a timestamp to the output file name"
	timeoutFlagDescription        = "time budget in seconds"
	skipLargeFilesFlagDescription = "replace files larger than --max-file-size with a placeholder"
	maxFileSizeFlagDescription    = "maximum file size in bytes"
	includeDocsFlagDescription    = "include previously generated reports"
	noIgnoreFlagDescription       = "do not apply ignore files (the built-in denylist still applies)"
	excludeFlagDescription        = "additional gitignore-style pattern to exclude"
	ignoreFileFlagDescription     = "ignore file name to read in every directory (default .gitignore)"
	copyFlagDescription           = "copy the finished report to the clipboard"
	commitFlagDescription         = "stage the finished report with git"
	tokensFlagDescription         = "estimate the token count of the report"
	modelFlagDescription          = "tokenizer model used for --tokens"
	progressFlagDescription       = "show a progress bar when stderr is a terminal"
	debounceFlagDescription       = "quiet period after the last change before regenerating"
	minIntervalFlagDescription    = "minimum time between two regenerations"
)

var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

type booleanFlagValue struct {
	target  *bool
	flagKey string
}

func (value *booleanFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf("%s %q for flag %q", booleanFlagInvalidValueErrorLabel, input, value.flagKey)
	}
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, ok := booleanFlagLiterals[normalized]
	if !ok {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", booleanFlagInvalidValueErrorLabel, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value == nil || value.target == nil {
		return booleanFlagTrueLiteral
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagValue := &booleanFlagValue{
		target:  target,
		flagKey: name,
	}
	flagSet.Var(flagValue, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = strconv.FormatBool(defaultValue)
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments rewrites "--flag no" into "--flag=no" for
// boolean flags so a separate literal is not mistaken for a positional path.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(currentArgument, "--") && !strings.Contains(currentArgument, "=") {
			flagName := strings.TrimPrefix(currentArgument, "--")
			if _, exists := booleanFlags[flagName]; exists && index+1 < len(arguments) {
				nextArgument := arguments[index+1]
				if !strings.HasPrefix(nextArgument, "-") {
					literal := strings.ToLower(strings.TrimSpace(nextArgument))
					if _, valid := booleanFlagLiterals[literal]; valid {
						normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, nextArgument))
						index += 2
						continue
					}
				}
			}
		}
		normalized = append(normalized, currentArgument)
		index++
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil || target == nil {
		return
	}
	visit := func(flagSet *pflag.FlagSet) {
		if flagSet == nil {
			return
		}
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if flag == nil || flag.Value == nil {
				return
			}
			if flag.Value.Type() == booleanFlagTypeName {
				target[flag.Name] = struct{}{}
			}
		})
	}
	visit(command.PersistentFlags())
	visit(command.Flags())
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}

// generateFlags holds the flags shared by the root and watch commands.
type generateFlags struct {
	outputFile      string
	noTimestamp     bool
	timeoutSeconds  int
	skipLargeFiles  bool
	maxFileSize     int64
	includeDocs     bool
	noIgnore        bool
	excludePatterns []string
	ignoreFiles     []string
	copyToClipboard bool
	commit          bool
	tokens          bool
	model           string
	progress        bool
}

func (flags *generateFlags) register(command *cobra.Command) {
	flagSet := command.Flags()
	flagSet.StringVar(&flags.outputFile, outputFileFlagName, "", outputFileFlagDescription)
	registerBooleanFlag(flagSet, &flags.noTimestamp, noTimestampFlagName, false, noTimestampFlagDescription)
	flagSet.IntVar(&flags.timeoutSeconds, timeoutFlagName, config.DefaultTimeoutSeconds, timeoutFlagDescription)
	registerBooleanFlag(flagSet, &flags.skipLargeFiles, skipLargeFilesFlagName, false, skipLargeFilesFlagDescription)
	flagSet.Int64Var(&flags.maxFileSize, maxFileSizeFlagName, config.DefaultMaxFileSizeBytes, maxFileSizeFlagDescription)
	registerBooleanFlag(flagSet, &flags.includeDocs, includeDocsFlagName, false, includeDocsFlagDescription)
	registerBooleanFlag(flagSet, &flags.noIgnore, noIgnoreFlagName, false, noIgnoreFlagDescription)
	flagSet.StringArrayVarP(&flags.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	flagSet.StringArrayVar(&flags.ignoreFiles, ignoreFileFlagName, nil, ignoreFileFlagDescription)
	registerBooleanFlag(flagSet, &flags.copyToClipboard, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(flagSet, &flags.commit, commitFlagName, false, commitFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, config.DefaultTokenModel, modelFlagDescription)
	registerBooleanFlag(flagSet, &flags.progress, progressFlagName, false, progressFlagDescription)
}

// apply overlays explicitly set flags onto settings resolved from configuration.
func (flags *generateFlags) apply(command *cobra.Command, settings config.GenerateSettings) config.GenerateSettings {
	changed := command.Flags().Changed
	if changed(outputFileFlagName) {
		settings.OutputPath = flags.outputFile
	}
	if changed(noTimestampFlagName) {
		settings.Timestamp = !flags.noTimestamp
	}
	if changed(timeoutFlagName) {
		settings.Timeout = time.Duration(flags.timeoutSeconds) * time.Second
	}
	if changed(skipLargeFilesFlagName) {
		settings.SkipLargeFiles = flags.skipLargeFiles
	}
	if changed(maxFileSizeFlagName) {
		settings.MaxFileSizeBytes = flags.maxFileSize
	}
	if changed(includeDocsFlagName) {
		settings.IncludeDocs = flags.includeDocs
	}
	if changed(noIgnoreFlagName) {
		settings.RespectIgnoreRules = !flags.noIgnore
	}
	if changed(excludeFlagName) {
		settings.Exclude = append(settings.Exclude, flags.excludePatterns...)
	}
	if changed(ignoreFileFlagName) {
		settings.IgnoreFiles = append([]string{}, flags.ignoreFiles...)
	}
	if changed(copyFlagName) {
		settings.Clipboard = flags.copyToClipboard
	}
	if changed(commitFlagName) {
		settings.Commit = flags.commit
	}
	if changed(tokensFlagName) {
		settings.TokensEnabled = flags.tokens
	}
	if changed(modelFlagName) {
		settings.TokenModel = flags.model
	}
	if changed(progressFlagName) {
		settings.Progress = flags.progress
	}
	return settings
}

// watchFlags holds the flags specific to the watch command.
type watchFlags struct {
	debounce    time.Duration
	minInterval time.Duration
}

func (flags *watchFlags) register(command *cobra.Command) {
	command.Flags().DurationVar(&flags.debounce, debounceFlagName, config.DefaultDebounceMilliseconds*time.Millisecond, debounceFlagDescription)
	command.Flags().DurationVar(&flags.minInterval, minIntervalFlagName, config.DefaultMinIntervalSeconds*time.Second, minIntervalFlagDescription)
}

func (flags *watchFlags) apply(command *cobra.Command, settings config.WatchSettings) config.WatchSettings {
	if command.Flags().Changed(debounceFlagName) {
		settings.Debounce = flags.debounce
	}
	if command.Flags().Changed(minIntervalFlagName) {
		settings.MinInterval = flags.minInterval
	}
	return settings
}
