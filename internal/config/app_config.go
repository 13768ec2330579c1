package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/temirov/codedoc/internal/utils"
)

// Defaults applied when neither configuration nor flags provide a value.
const (
	DefaultTimeoutSeconds       = 120
	DefaultMaxFileSizeBytes     = int64(1024 * 1024)
	DefaultTokenModel           = "gpt-4o"
	DefaultDebounceMilliseconds = 5000
	DefaultMinIntervalSeconds   = 30
)

const configurationKeyDelimiter = "::"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Generate GenerateConfiguration `mapstructure:"generate"`
	Watch    WatchConfiguration    `mapstructure:"watch"`
}

// GenerateConfiguration defines options for producing a report.
type GenerateConfiguration struct {
	RespectIgnoreRules *bool              `mapstructure:"respect_ignore_rules"`
	IncludeDocs        *bool              `mapstructure:"include_docs"`
	OutputPath         string             `mapstructure:"output_path"`
	Timestamp          *bool              `mapstructure:"timestamp"`
	TimeoutSeconds     *int               `mapstructure:"timeout_seconds"`
	SkipLargeFiles     *bool              `mapstructure:"skip_large_files"`
	MaxFileSizeBytes   *int64             `mapstructure:"max_file_size_bytes"`
	Exclude            []string           `mapstructure:"exclude"`
	IgnoreFiles        []string           `mapstructure:"ignore_files"`
	Clipboard          *bool              `mapstructure:"clipboard"`
	Commit             *bool              `mapstructure:"commit"`
	Progress           *bool              `mapstructure:"progress"`
	Tokens             TokenConfiguration `mapstructure:"tokens"`
	Languages          map[string]string  `mapstructure:"languages"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// WatchConfiguration defines defaults for the watch command.
type WatchConfiguration struct {
	DebounceMilliseconds *int `mapstructure:"debounce_milliseconds"`
	MinIntervalSeconds   *int `mapstructure:"min_interval_seconds"`
}

// GenerateSettings is the fully resolved form of GenerateConfiguration.
type GenerateSettings struct {
	RespectIgnoreRules bool
	IncludeDocs        bool
	OutputPath         string
	Timestamp          bool
	Timeout            time.Duration
	SkipLargeFiles     bool
	MaxFileSizeBytes   int64
	Exclude            []string
	IgnoreFiles        []string
	Clipboard          bool
	Commit             bool
	Progress           bool
	TokensEnabled      bool
	TokenModel         string
	Languages          map[string]string
}

// WatchSettings is the fully resolved form of WatchConfiguration.
type WatchSettings struct {
	Debounce    time.Duration
	MinInterval time.Duration
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Generate.Exclude = utils.DeduplicatePatterns(merged.Generate.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	// Language overrides are keyed by extensions such as ".py", so dots cannot delimit keys.
	reader := viper.NewWithOptions(viper.KeyDelimiter(configurationKeyDelimiter))
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Generate = result.Generate.merge(override.Generate)
	result.Watch = result.Watch.merge(override.Watch)
	return result
}

func (config GenerateConfiguration) merge(override GenerateConfiguration) GenerateConfiguration {
	result := config
	if override.RespectIgnoreRules != nil {
		result.RespectIgnoreRules = cloneBool(override.RespectIgnoreRules)
	}
	if override.IncludeDocs != nil {
		result.IncludeDocs = cloneBool(override.IncludeDocs)
	}
	if override.OutputPath != "" {
		result.OutputPath = override.OutputPath
	}
	if override.Timestamp != nil {
		result.Timestamp = cloneBool(override.Timestamp)
	}
	if override.TimeoutSeconds != nil {
		result.TimeoutSeconds = cloneInt(override.TimeoutSeconds)
	}
	if override.SkipLargeFiles != nil {
		result.SkipLargeFiles = cloneBool(override.SkipLargeFiles)
	}
	if override.MaxFileSizeBytes != nil {
		maxFileSize := *override.MaxFileSizeBytes
		result.MaxFileSizeBytes = &maxFileSize
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if len(override.IgnoreFiles) > 0 {
		result.IgnoreFiles = append([]string{}, utils.DeduplicatePatterns(override.IgnoreFiles)...)
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.Commit != nil {
		result.Commit = cloneBool(override.Commit)
	}
	if override.Progress != nil {
		result.Progress = cloneBool(override.Progress)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if len(override.Languages) > 0 {
		languages := make(map[string]string, len(result.Languages)+len(override.Languages))
		for extension, tag := range result.Languages {
			languages[extension] = tag
		}
		for extension, tag := range override.Languages {
			languages[strings.ToLower(extension)] = tag
		}
		result.Languages = languages
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config WatchConfiguration) merge(override WatchConfiguration) WatchConfiguration {
	result := config
	if override.DebounceMilliseconds != nil {
		result.DebounceMilliseconds = cloneInt(override.DebounceMilliseconds)
	}
	if override.MinIntervalSeconds != nil {
		result.MinIntervalSeconds = cloneInt(override.MinIntervalSeconds)
	}
	return result
}

// Resolve applies defaults to every unset field.
func (config GenerateConfiguration) Resolve() GenerateSettings {
	settings := GenerateSettings{
		RespectIgnoreRules: boolOrDefault(config.RespectIgnoreRules, true),
		IncludeDocs:        boolOrDefault(config.IncludeDocs, false),
		OutputPath:         config.OutputPath,
		Timestamp:          boolOrDefault(config.Timestamp, true),
		Timeout:            time.Duration(intOrDefault(config.TimeoutSeconds, DefaultTimeoutSeconds)) * time.Second,
		SkipLargeFiles:     boolOrDefault(config.SkipLargeFiles, false),
		MaxFileSizeBytes:   DefaultMaxFileSizeBytes,
		Exclude:            append([]string{}, config.Exclude...),
		IgnoreFiles:        append([]string{}, config.IgnoreFiles...),
		Clipboard:          boolOrDefault(config.Clipboard, false),
		Commit:             boolOrDefault(config.Commit, false),
		Progress:           boolOrDefault(config.Progress, false),
		TokensEnabled:      boolOrDefault(config.Tokens.Enabled, false),
		TokenModel:         config.Tokens.Model,
		Languages:          config.Languages,
	}
	if config.MaxFileSizeBytes != nil {
		settings.MaxFileSizeBytes = *config.MaxFileSizeBytes
	}
	if settings.OutputPath == "" {
		settings.OutputPath = utils.DefaultOutputFileName
	}
	if len(settings.IgnoreFiles) == 0 {
		settings.IgnoreFiles = []string{utils.GitIgnoreFileName}
	}
	if settings.TokenModel == "" {
		settings.TokenModel = DefaultTokenModel
	}
	return settings
}

// Resolve applies defaults to every unset field.
func (config WatchConfiguration) Resolve() WatchSettings {
	return WatchSettings{
		Debounce:    time.Duration(intOrDefault(config.DebounceMilliseconds, DefaultDebounceMilliseconds)) * time.Millisecond,
		MinInterval: time.Duration(intOrDefault(config.MinIntervalSeconds, DefaultMinIntervalSeconds)) * time.Second,
	}
}

func boolOrDefault(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}

func intOrDefault(value *int, defaultValue int) int {
	if value == nil {
		return defaultValue
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
