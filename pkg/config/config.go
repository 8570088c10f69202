/*
Package config manages the TOML config of the completion service.
*/
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tranleduy2000/javaide-sub031/internal/utils"
)

// Config holds the entire config structure
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Index      IndexConfig      `toml:"index"`
	Completion CompletionConfig `toml:"completion"`
	CLI        CliConfig        `toml:"cli"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit  int `toml:"max_limit"`
	MinPrefix int `toml:"min_prefix"`
	// MaxSource caps the size of a request's source text in bytes.
	MaxSource int `toml:"max_source"`
}

// IndexConfig holds classpath indexing options.
type IndexConfig struct {
	Classpath       []string `toml:"classpath"`
	Exclude         []string `toml:"exclude"`
	IncludeAndroid  bool     `toml:"include_android"`
	Workers         int      `toml:"workers"`
	Watch           bool     `toml:"watch"`
	WatchDebounceMs int      `toml:"watch_debounce_ms"`
}

// CompletionConfig holds resolver options.
type CompletionConfig struct {
	DefaultLimit    int  `toml:"default_limit"`
	StatementWindow int  `toml:"statement_window"`
	Keywords        bool `toml:"keywords"`
	InheritDepth    int  `toml:"inherit_depth"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowDiff     bool `toml:"show_diff"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		return utils.GetExecutableDir()
	}
	primaryPath := filepath.Join(homeDir, ".config", "javacomplete")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "javacomplete")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/javacomplete/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			MaxLimit:  64,
			MinPrefix: 0,
			MaxSource: 1 << 20,
		},
		Index: IndexConfig{
			Classpath:       []string{},
			Exclude:         []string{"**/package-info", "**/module-info"},
			IncludeAndroid:  true,
			Workers:         4,
			Watch:           true,
			WatchDebounceMs: 300,
		},
		Completion: CompletionConfig{
			DefaultLimit:    50,
			StatementWindow: 2500,
			Keywords:        true,
			InheritDepth:    8,
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			ShowDiff:     true,
		},
	}
}

// WatchDebounce is the quiet period before classpath changes are applied.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Index.WatchDebounceMs) * time.Millisecond
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse keeps every well-typed value of a file that does not
// decode into Config as a whole.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.ExtractSection(tempConfig, "index"); ok {
		extractIndexConfig(section, &config.Index)
	}
	if section, ok := utils.ExtractSection(tempConfig, "completion"); ok {
		extractCompletionConfig(section, &config.Completion)
	}
	if section, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(section, &config.CLI)
	}
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt64(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "min_prefix"); ok {
		server.MinPrefix = val
	}
	if val, ok := utils.ExtractInt64(data, "max_source"); ok {
		server.MaxSource = val
	}
}

func extractIndexConfig(data map[string]any, index *IndexConfig) {
	if val, ok := utils.ExtractStrings(data, "classpath"); ok {
		index.Classpath = val
	}
	if val, ok := utils.ExtractStrings(data, "exclude"); ok {
		index.Exclude = val
	}
	if val, ok := utils.ExtractBool(data, "include_android"); ok {
		index.IncludeAndroid = val
	}
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		index.Workers = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		index.Watch = val
	}
	if val, ok := utils.ExtractInt64(data, "watch_debounce_ms"); ok {
		index.WatchDebounceMs = val
	}
}

func extractCompletionConfig(data map[string]any, c *CompletionConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		c.DefaultLimit = val
	}
	if val, ok := utils.ExtractInt64(data, "statement_window"); ok {
		c.StatementWindow = val
	}
	if val, ok := utils.ExtractBool(data, "keywords"); ok {
		c.Keywords = val
	}
	if val, ok := utils.ExtractInt64(data, "inherit_depth"); ok {
		c.InheritDepth = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "show_diff"); ok {
		cli.ShowDiff = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return err
	}
	return utils.SaveTOMLFile(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server values and saves to file. A nil argument keeps
// the current value.
func (c *Config) Update(configPath string, maxLimit, minPrefix, maxSource *int) error {
	server := &c.Server
	if maxLimit != nil {
		server.MaxLimit = *maxLimit
	}
	if minPrefix != nil {
		server.MinPrefix = *minPrefix
	}
	if maxSource != nil {
		server.MaxSource = *maxSource
	}
	if configPath == "" {
		return nil
	}
	return SaveConfig(c, configPath)
}
