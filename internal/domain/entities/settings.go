package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	appName = "runref"

	// ConfigEnvVar points at an explicit settings file, bypassing discovery.
	ConfigEnvVar = "RUNREF_CONFIG"

	defaultTimeout      = 15 * time.Second
	defaultMaxRedirects = 10
)

// Settings holds every tunable of a run. Values come from defaults, an
// optional YAML file, and RUNREF_* environment variables, in increasing
// order of precedence.
type Settings struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRedirects    int           `mapstructure:"max_redirects"`
	FollowHosts     []string      `mapstructure:"follow_hosts"`
	DefaultRef      string        `mapstructure:"default_ref"`
	WorkspaceDir    string        `mapstructure:"workspace_dir"`
	CacheFile       string        `mapstructure:"cache_file"`
	EntryFile       string        `mapstructure:"entry_file"`
	SourceExtension string        `mapstructure:"source_extension"`
	Runtime         string        `mapstructure:"runtime"`
	Interactive     bool          `mapstructure:"interactive"`
	KeyringService  string        `mapstructure:"keyring_service"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() *Settings {
	return &Settings{
		Timeout:         defaultTimeout,
		MaxRedirects:    defaultMaxRedirects,
		FollowHosts:     []string{},
		DefaultRef:      "main",
		WorkspaceDir:    defaultWorkspaceDir(),
		CacheFile:       defaultCacheFile(),
		EntryFile:       "program.cs",
		SourceExtension: ".cs",
		Runtime:         "dotnet",
		Interactive:     true,
		KeyringService:  appName,
	}
}

// NewSettings loads settings from configPath. An empty path triggers
// discovery via FindConfigFile; when no file exists, defaults and
// environment overrides still apply.
func NewSettings(configPath string) (*Settings, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("max_redirects", defaults.MaxRedirects)
	v.SetDefault("follow_hosts", defaults.FollowHosts)
	v.SetDefault("default_ref", defaults.DefaultRef)
	v.SetDefault("workspace_dir", defaults.WorkspaceDir)
	v.SetDefault("cache_file", defaults.CacheFile)
	v.SetDefault("entry_file", defaults.EntryFile)
	v.SetDefault("source_extension", defaults.SourceExtension)
	v.SetDefault("runtime", defaults.Runtime)
	v.SetDefault("interactive", defaults.Interactive)
	v.SetDefault("keyring_service", defaults.KeyringService)

	v.SetEnvPrefix(appName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		if found, err := FindConfigFile(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
		}
		logger.Debugf("Using config file: %s", configPath)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// NewSettingsFromEnvironment is the container entry point: it honours
// RUNREF_CONFIG and otherwise falls back to discovery.
func NewSettingsFromEnvironment() (*Settings, error) {
	return NewSettings(os.Getenv(ConfigEnvVar))
}

// FindConfigFile searches for a settings file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	locations := []string{".", ".config"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, homeDir)
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, filepath.Join(configDir, appName))
	}

	patterns := []string{
		".runref.yaml",
		".runref.yml",
		"runref.yaml",
		"runref.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

func (s *Settings) validate() error {
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must not be negative, got %d", s.MaxRedirects)
	}
	if s.DefaultRef == "" {
		return errors.New("default_ref is required")
	}
	if s.WorkspaceDir == "" {
		return errors.New("workspace_dir is required")
	}
	if s.CacheFile == "" {
		return errors.New("cache_file is required")
	}
	if s.EntryFile == "" || s.SourceExtension == "" {
		return errors.New("entry_file and source_extension are required")
	}
	return nil
}

func defaultWorkspaceDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.TempDir(), appName)
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cacheDir, appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

func defaultCacheFile() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, appName, "cache.yaml")
	}
	return filepath.Join(defaultWorkspaceDir(), "cache.yaml")
}
