package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"gpusim/internal/app"
	"gpusim/internal/config"
	"gpusim/internal/logger"
)

const version = "0.1.0"

const defaultConfigPath = "configs/config.yaml"

// NewRootCmd assembles the gpusim command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gpusim",
		Short: "Agent-based GPU market simulator",
		Long: `gpusim simulates a GPU market where agents with different trading
strategies buy and sell from a shared stock. Every successful trade moves
the price; runs can be persisted, charted, and served over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "configuration file path (YAML)")
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and report the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			applyRunFlags(cmd, cfg)

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, err = a.RunSimulation(ctx)
			return err
		},
	}
	cmd.Flags().Int64("seed", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().Int("iterations", 0, "number of market iterations")
	cmd.Flags().String("chart", "", "write an HTML chart of the run to this path")
	cmd.Flags().Bool("quiet", false, "do not mirror every iteration to the log")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("seed") {
		cfg.Sim.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("iterations") {
		cfg.Sim.Iterations, _ = cmd.Flags().GetInt("iterations")
	}
	if cmd.Flags().Changed("chart") {
		cfg.Report.ChartPath, _ = cmd.Flags().GetString("chart")
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		cfg.Report.Console = false
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded runs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cleanup, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gpusim v%s\n", version)
		},
	}
}

// loadConfig resolves the config path (flag, then GPUSIM_CONFIG, then the
// default file if it exists, then pure defaults), loads it, and sets up
// the log output. The returned cleanup closes the log file, if any.
func loadConfig(cmd *cobra.Command) (*config.Config, func(), error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("GPUSIM_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up log output: %w", err)
	}
	cleanup := func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return cfg, cleanup, nil
}

// setupLogOutput tees log output to a file when app.log_path is set.
func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
