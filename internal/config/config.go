package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv names the environment variable holding the Gemini API key.
const APIKeyEnv = "GEMINI_API_KEY"

type Config struct {
	CacheDir  string `yaml:"cache_dir"`
	DBPath    string `yaml:"db_path"`
	LogPath   string `yaml:"log_path"`
	ImageDir  string `yaml:"image_dir"`
	ExportDir string `yaml:"export_dir"`

	MaxDepth      int `yaml:"max_depth"`
	ContextWindow int `yaml:"context_window"`

	ImageTimeout time.Duration `yaml:"image_timeout"`
	ImageMaxDim  int           `yaml:"image_max_dim"`
	ImageWorkers int           `yaml:"image_workers"`

	FetchWorkers int           `yaml:"fetch_workers"`
	StoryLimit   int           `yaml:"story_limit"`
	StoryTTL     time.Duration `yaml:"story_ttl"`

	Model           string `yaml:"model"`
	AnnotateWorkers int    `yaml:"annotate_workers"`
	APIKey          string `yaml:"-"`
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "threadprep")
	return Config{
		CacheDir:        cacheDir,
		DBPath:          filepath.Join(cacheDir, "cache.db"),
		LogPath:         filepath.Join(cacheDir, "debug.log"),
		ImageDir:        "images",
		ExportDir:       "out",
		MaxDepth:        5,
		ContextWindow:   3,
		ImageTimeout:    5 * time.Second,
		ImageMaxDim:     256,
		ImageWorkers:    1,
		FetchWorkers:    10,
		StoryLimit:      100,
		StoryTTL:        time.Hour,
		Model:           "gemini-2.0-flash",
		AnnotateWorkers: 4,
	}
}

// Load starts from Default, overlays the YAML file at path when it
// exists, then picks up the API key from the environment or a .env file
// in the working directory. An empty path skips the YAML step.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()
	cfg.APIKey = os.Getenv(APIKeyEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must be >= 0, got %d", c.MaxDepth))
	}
	if c.ContextWindow < 0 {
		errs = append(errs, fmt.Errorf("context_window must be >= 0, got %d", c.ContextWindow))
	}
	if c.ImageTimeout <= 0 {
		errs = append(errs, fmt.Errorf("image_timeout must be positive, got %s", c.ImageTimeout))
	}
	if c.ImageMaxDim <= 0 {
		errs = append(errs, fmt.Errorf("image_max_dim must be positive, got %d", c.ImageMaxDim))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	return errors.Join(errs...)
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	return filepath.Join(userConfigDir(), "threadprep", "config.yaml")
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
