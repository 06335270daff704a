package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"photo-gallery/pkg/config"
	"photo-gallery/pkg/services"
)

// Configuration flags
var (
	configPath  string
	manifestURL string
	portNumber  string
	logLevel    string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "photo-gallery",
		Short: "Photo Gallery renders a month-grouped photo album from a JSON manifest",
		Long: `Photo Gallery is a command line application that loads a photo manifest
over HTTP or from Google Cloud Storage and serves it as a masonry gallery with a
full-screen viewer. It can also inspect, verify and measure the manifest.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "gallery.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&manifestURL, "manifest", "m", "", "Manifest URL, http(s):// or gs:// (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Port to listen on (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add commands to root
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newShowGalleryCmd())
	rootCmd.AddCommand(newListGroupsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newOpenCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newMeasureCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags and
// installs the default logger at the configured level.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if manifestURL != "" {
		cfg.ManifestURL = manifestURL
	}
	if portNumber != "" {
		cfg.Port = portNumber
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newService() (*services.Service, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return services.NewService(cfg), nil
}
