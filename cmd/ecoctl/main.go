package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/config"
	"github.com/bryanwahyu/ecosense/internal/logging"
)

var (
	// Global flags
	cfgPath    string
	backendURL string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ecoctl",
	Short: "EcoSense command line client",
	Long: `ecoctl talks to the EcoSense API.

It analyzes product images for their carbon footprint, asks for solar energy
management plans, and runs the terminal dashboard. When the API cannot be
reached, analyses fall back to clearly labelled demo data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if backendURL != "" {
			cfg.Client.BackendURL = backendURL
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, "console")
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "EcoSense API base URL (overrides client.backendURL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	carbonCmd.AddCommand(carbonAnalyzeCmd)
	carbonCmd.AddCommand(carbonSampleCmd)
	solarCmd.AddCommand(solarAnalyzeCmd)
	sampleCmd.AddCommand(samplePushCmd)

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(carbonCmd)
	rootCmd.AddCommand(solarCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(sampleCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *backend.Client {
	return backend.New(cfg.Client.BackendURL,
		backend.WithTimeout(cfg.Client.RequestTimeout),
		backend.WithLogger(logger),
	)
}
