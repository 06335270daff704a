package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides, e.g. GALLERY_MANIFEST_URL.
// Nested keys use a double underscore: GALLERY_VIEWPORT__HEIGHT.
const EnvPrefix = "GALLERY_"

// Config holds all configuration for the application
type Config struct {
	ManifestURL    string        `yaml:"manifest_url" koanf:"manifest_url"`
	PhotosURL      string        `yaml:"photos_url" koanf:"photos_url"`
	ThumbsURL      string        `yaml:"thumbs_url" koanf:"thumbs_url"`
	Bucket         string        `yaml:"bucket" koanf:"bucket"`
	Port           string        `yaml:"port" koanf:"port"`
	Title          string        `yaml:"title" koanf:"title"`
	ViewsDir       string        `yaml:"views_dir" koanf:"views_dir"`
	PublicDir      string        `yaml:"public_dir" koanf:"public_dir"`
	CacheTTL       time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"` // 0 fetches the manifest on every page load
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
	FailureMessage string        `yaml:"failure_message" koanf:"failure_message"`
	LogLevel       string        `yaml:"log_level" koanf:"log_level"`
	AllowedOrigins []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	Layout         LayoutConfig  `yaml:"layout" koanf:"layout"`
	Viewport       Viewport      `yaml:"viewport" koanf:"viewport"`
	Assets         Assets        `yaml:"assets" koanf:"assets"`
}

// LayoutConfig sizes the estimated masonry placement
type LayoutConfig struct {
	ContainerWidth float64 `yaml:"container_width" koanf:"container_width"`
	ColumnWidth    float64 `yaml:"column_width" koanf:"column_width"`
	TitleHeight    float64 `yaml:"title_height" koanf:"title_height"`
}

// Viewport is the initial viewport used to promote above-the-fold images
type Viewport struct {
	Height     float64 `yaml:"height" koanf:"height"`
	LazyMargin float64 `yaml:"lazy_margin" koanf:"lazy_margin"`
}

// Assets lists the external browser libraries the page depends on
type Assets struct {
	Masonry      string        `yaml:"masonry" koanf:"masonry"`
	PhotoSwipe   string        `yaml:"photoswipe" koanf:"photoswipe"`
	PhotoSwipeUI string        `yaml:"photoswipe_ui" koanf:"photoswipe_ui"`
	Styles       []string      `yaml:"styles" koanf:"styles"`
	Probe        bool          `yaml:"probe" koanf:"probe"`
	ReadyTimeout time.Duration `yaml:"ready_timeout" koanf:"ready_timeout"`
}

// ErrManifestURLNotSet is returned when no manifest URL is configured
var ErrManifestURLNotSet = errors.New("manifest_url not set")

// ErrInvalidLayout is returned when the layout sizes cannot produce a column
var ErrInvalidLayout = errors.New("layout column_width must be positive and not exceed container_width")

// DefaultConfig returns a Config populated with default values
func DefaultConfig() *Config {
	return &Config{
		PhotosURL:      "photos/",
		ThumbsURL:      "min_photos/",
		Port:           "8080",
		Title:          "Album",
		ViewsDir:       "./views",
		PublicDir:      "./public",
		CacheTTL:       0,
		RequestTimeout: 30 * time.Second,
		FailureMessage: "图片加载失败，请刷新页面重试。",
		LogLevel:       "info",
		Layout: LayoutConfig{
			ContainerWidth: 1200,
			ColumnWidth:    300,
			TitleHeight:    80,
		},
		Viewport: Viewport{
			Height:     900,
			LazyMargin: 200,
		},
		Assets: Assets{
			Masonry:      "https://unpkg.com/masonry-layout@4/dist/masonry.pkgd.min.js",
			PhotoSwipe:   "https://cdnjs.cloudflare.com/ajax/libs/photoswipe/4.1.3/photoswipe.min.js",
			PhotoSwipeUI: "https://cdnjs.cloudflare.com/ajax/libs/photoswipe/4.1.3/photoswipe-ui-default.min.js",
			Styles: []string{
				"https://cdnjs.cloudflare.com/ajax/libs/photoswipe/4.1.3/photoswipe.min.css",
				"https://cdnjs.cloudflare.com/ajax/libs/photoswipe/4.1.3/default-skin/default-skin.min.css",
			},
			ReadyTimeout: 5 * time.Second,
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GALLERY_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks the values needed to serve a gallery
func (c *Config) Validate() error {
	if c.ManifestURL == "" {
		return ErrManifestURLNotSet
	}
	if c.Layout.ColumnWidth <= 0 || c.Layout.ColumnWidth > c.Layout.ContainerWidth {
		return ErrInvalidLayout
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative")
	}
	return nil
}

// SlogLevel maps log_level onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Items URL: http://localhost:%s/api/items\n", c.Port)
}
