package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semprov.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semprov"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "SEMPROV"
)

// Env holds the settings that may come from the environment or a .env
// file. Credentials belong here rather than in YAML.
type Env struct {
	ProjectName     string `envconfig:"PROJECT_NAME"`
	InputRoot       string `envconfig:"INPUT_ROOT"`
	OutputBackend   string `envconfig:"OUTPUT_BACKEND"`
	OutputDir       string `envconfig:"OUTPUT_DIR"`
	S3Endpoint      string `envconfig:"S3_ENDPOINT"`
	S3Region        string `envconfig:"S3_REGION"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
	NATSURL         string `envconfig:"NATS_URL"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`
}

// Config returns the environment as a config layer.
func (e Env) Config() *Config {
	c := &Config{}
	c.Project.Name = e.ProjectName
	c.Input.Root = e.InputRoot
	c.Output.Backend = e.OutputBackend
	c.Output.Dir = e.OutputDir
	c.Output.S3 = S3Config{
		Endpoint:  e.S3Endpoint,
		Region:    e.S3Region,
		Bucket:    e.S3Bucket,
		AccessKey: e.S3AccessKey,
		SecretKey: e.S3SecretKey,
	}
	c.NATS.URL = e.NATSURL
	c.Log.Level = e.LogLevel
	c.Metrics.Textfile = e.MetricsTextfile
	return c
}

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	dotenv  bool
	workdir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, dotenv: true}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semprov/config.yaml)
// 3. Project config (semprov.yaml in current or parent directories)
// 4. The file named by path, if any
// 5. Environment variables (SEMPROV_*, after loading .env)
func (l *Loader) Load(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := loadLayer(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" && projectConfigPath != path {
		if projectConfig, err := loadLayer(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// An explicit file must exist
	if path != "" {
		explicit, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", path))
		config.Merge(explicit)
	}

	env, err := l.loadEnv()
	if err != nil {
		return nil, err
	}
	config.Merge(env.Config())

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) loadEnv() (Env, error) {
	if l.dotenv {
		// A missing .env file is fine
		_ = godotenv.Load()
	}
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return Env{}, fmt.Errorf("failed to read environment: %w", err)
	}
	return env, nil
}

// loadLayer reads a file without defaults so that only the keys it sets
// take part in the merge.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it doesn't
// exist and returns its path. An existing file is left untouched.
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return "", errors.New("no home directory for the user config")
	}

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semprov.yaml in the working directory and its parents
func (l *Loader) findProjectConfig() string {
	dir := l.workdir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
