/*
Package config manages TOML config for keypredict.

Values come from, in increasing priority: builtin defaults, the TOML file,
and KEYPREDICT_* environment variables.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bastiangx/keypredict/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the entire config structure
type Config struct {
	Engine   EngineConfig   `toml:"engine"`
	Dict     DictConfig     `toml:"dict"`
	UserDict UserDictConfig `toml:"userdict"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// EngineConfig tunes the suggestion engine.
type EngineConfig struct {
	Mode                  string `toml:"mode" env:"KEYPREDICT_MODE"`
	MaxSuggestions        int    `toml:"max_suggestions" env:"KEYPREDICT_MAX_SUGGESTIONS"`
	MaxCorrections        int    `toml:"max_corrections" env:"KEYPREDICT_MAX_CORRECTIONS"`
	MaxDepthFactor        int    `toml:"max_depth_factor"`
	MaxVisits             int    `toml:"max_visits"`
	TypedLetterMultiplier int    `toml:"typed_letter_multiplier"`
	FullWordMultiplier    int    `toml:"full_word_multiplier"`
	UserBoost             int    `toml:"user_boost"`
	CacheSize             int    `toml:"cache_size" env:"KEYPREDICT_CACHE_SIZE"`
}

// DictConfig holds dictionary options.
type DictConfig struct {
	Dir      string `toml:"dir" env:"KEYPREDICT_DICT_DIR"`
	Language string `toml:"language" env:"KEYPREDICT_LANG"`
	Legacy   bool   `toml:"legacy"`
}

// UserDictConfig selects where learned words live.
type UserDictConfig struct {
	Backend          string `toml:"backend" env:"KEYPREDICT_USERDICT_BACKEND"`
	Path             string `toml:"path" env:"KEYPREDICT_USERDICT_PATH"`
	InitialFrequency int    `toml:"initial_frequency"`
	PromoteAfter     int    `toml:"promote_after"`
	FlushEvery       int    `toml:"flush_every"`
}

// ServerConfig has IPC server options.
type ServerConfig struct {
	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level string `toml:"level" env:"KEYPREDICT_LOG_LEVEL"`
}

// User dictionary backends.
const (
	BackendSQLite   = "sqlite"
	BackendSnapshot = "snapshot"
	BackendMemory   = "memory"
)

var (
	validModes    = []string{"none", "basic", "full"}
	validBackends = []string{BackendSQLite, BackendSnapshot, BackendMemory}
	validLevels   = []string{"debug", "info", "warn", "error"}
)

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
	primaryPath := filepath.Join(homeDir, ".config", utils.AppName)
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", utils.AppName)
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
// 2. Default path: [UserConfigDir]/keypredict/config.toml
// 3. Builtin defaults
//
// Environment overrides are applied on top of whichever file was used.
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	config, path := loadFile(customConfigPath)
	if err := ApplyEnv(config); err != nil {
		return nil, path, err
	}
	if err := config.Validate(); err != nil {
		return nil, path, fmt.Errorf("config: validate: %w", err)
	}
	return config, path, nil
}

func loadFile(customConfigPath string) (*Config, string) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), ""
	}
	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), ""
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath
}

// ApplyEnv overrides config values with the KEYPREDICT_* variables that
// are set. Unset variables leave the current value alone.
func ApplyEnv(config *Config) error {
	if err := cleanenv.UpdateEnv(config); err != nil {
		return fmt.Errorf("config: read env: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Mode:                  "basic",
			MaxSuggestions:        10,
			MaxCorrections:        2,
			MaxDepthFactor:        3,
			MaxVisits:             50000,
			TypedLetterMultiplier: 2,
			FullWordMultiplier:    2,
			UserBoost:             2,
			CacheSize:             128,
		},
		Dict: DictConfig{
			Dir:      "data",
			Language: "el",
		},
		UserDict: UserDictConfig{
			Backend:          BackendSQLite,
			InitialFrequency: 128,
			PromoteAfter:     3,
			FlushEvery:       16,
		},
		Server: ServerConfig{
			MaxLimit:     32,
			DefaultLimit: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	mode := strings.ToLower(c.Engine.Mode)
	if !slices.Contains(validModes, mode) {
		return fmt.Errorf("engine.mode must be one of %v (got %q)", validModes, c.Engine.Mode)
	}
	if c.Engine.MaxSuggestions <= 0 {
		return fmt.Errorf("engine.max_suggestions must be > 0 (got %d)", c.Engine.MaxSuggestions)
	}
	if c.Engine.MaxCorrections < 0 {
		return fmt.Errorf("engine.max_corrections must be >= 0 (got %d)", c.Engine.MaxCorrections)
	}
	if c.Engine.MaxDepthFactor < 1 {
		return fmt.Errorf("engine.max_depth_factor must be >= 1 (got %d)", c.Engine.MaxDepthFactor)
	}
	if c.Engine.MaxVisits <= 0 {
		return fmt.Errorf("engine.max_visits must be > 0 (got %d)", c.Engine.MaxVisits)
	}
	if c.Engine.TypedLetterMultiplier < 1 || c.Engine.FullWordMultiplier < 1 || c.Engine.UserBoost < 1 {
		return fmt.Errorf("engine multipliers must be >= 1")
	}
	if c.Engine.CacheSize < 0 {
		return fmt.Errorf("engine.cache_size must be >= 0 (got %d)", c.Engine.CacheSize)
	}
	if c.Dict.Language == "" {
		return fmt.Errorf("dict.language must not be empty")
	}
	if !slices.Contains(validBackends, c.UserDict.Backend) {
		return fmt.Errorf("userdict.backend must be one of %v (got %q)", validBackends, c.UserDict.Backend)
	}
	if c.UserDict.InitialFrequency < 1 || c.UserDict.InitialFrequency > 255 {
		return fmt.Errorf("userdict.initial_frequency must be in 1..255 (got %d)", c.UserDict.InitialFrequency)
	}
	if c.UserDict.PromoteAfter < 0 {
		return fmt.Errorf("userdict.promote_after must be >= 0 (got %d)", c.UserDict.PromoteAfter)
	}
	if c.Server.MaxLimit <= 0 || c.Server.DefaultLimit <= 0 || c.Server.DefaultLimit > c.Server.MaxLimit {
		return fmt.Errorf("server limits must satisfy 0 < default_limit <= max_limit (got %d, %d)",
			c.Server.DefaultLimit, c.Server.MaxLimit)
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of %v (got %q)", validLevels, c.Log.Level)
	}
	return nil
}

// UserDictPath returns the configured user dictionary path, or a default
// inside configDir named after the backend.
func (c *Config) UserDictPath(configDir string) string {
	if c.UserDict.Path != "" {
		return c.UserDict.Path
	}
	name := "user.db"
	if c.UserDict.Backend == BackendSnapshot {
		name = "user.msgpack"
	}
	return filepath.Join(configDir, name)
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

// tryPartialParse keeps every well-typed value it can find and defaults
// the rest.
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if section, ok := utils.Extract[map[string]any](tempConfig, "engine"); ok {
		extractEngineConfig(section, &config.Engine)
	}
	if section, ok := utils.Extract[map[string]any](tempConfig, "dict"); ok {
		extractDictConfig(section, &config.Dict)
	}
	if section, ok := utils.Extract[map[string]any](tempConfig, "userdict"); ok {
		extractUserDictConfig(section, &config.UserDict)
	}
	if section, ok := utils.Extract[map[string]any](tempConfig, "server"); ok {
		extractServerConfig(section, &config.Server)
	}
	if section, ok := utils.Extract[map[string]any](tempConfig, "log"); ok {
		if val, ok := utils.Extract[string](section, "level"); ok {
			config.Log.Level = val
		}
	}
	return config, nil
}

func extractEngineConfig(data map[string]any, engine *EngineConfig) {
	if val, ok := utils.Extract[string](data, "mode"); ok {
		engine.Mode = val
	}
	ints := map[string]*int{
		"max_suggestions":         &engine.MaxSuggestions,
		"max_corrections":         &engine.MaxCorrections,
		"max_depth_factor":        &engine.MaxDepthFactor,
		"max_visits":              &engine.MaxVisits,
		"typed_letter_multiplier": &engine.TypedLetterMultiplier,
		"full_word_multiplier":    &engine.FullWordMultiplier,
		"user_boost":              &engine.UserBoost,
		"cache_size":              &engine.CacheSize,
	}
	for key, dst := range ints {
		if val, ok := utils.ExtractInt(data, key); ok {
			*dst = val
		}
	}
}

func extractDictConfig(data map[string]any, dict *DictConfig) {
	if val, ok := utils.Extract[string](data, "dir"); ok {
		dict.Dir = val
	}
	if val, ok := utils.Extract[string](data, "language"); ok {
		dict.Language = val
	}
	if val, ok := utils.Extract[bool](data, "legacy"); ok {
		dict.Legacy = val
	}
}

func extractUserDictConfig(data map[string]any, user *UserDictConfig) {
	if val, ok := utils.Extract[string](data, "backend"); ok {
		user.Backend = val
	}
	if val, ok := utils.Extract[string](data, "path"); ok {
		user.Path = val
	}
	if val, ok := utils.ExtractInt(data, "initial_frequency"); ok {
		user.InitialFrequency = val
	}
	if val, ok := utils.ExtractInt(data, "promote_after"); ok {
		user.PromoteAfter = val
	}
	if val, ok := utils.ExtractInt(data, "flush_every"); ok {
		user.FlushEvery = val
	}
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt(data, "max_limit"); ok {
		server.MaxLimit = val
	}
	if val, ok := utils.ExtractInt(data, "default_limit"); ok {
		server.DefaultLimit = val
	}
}

// RebuildConfigFile force creates a new config.toml at the default path
func RebuildConfigFile() (string, error) {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}
	if err := utils.EnsureDir(filepath.Dir(defaultPath)); err != nil {
		return "", err
	}
	return defaultPath, SaveConfig(DefaultConfig(), defaultPath)
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
