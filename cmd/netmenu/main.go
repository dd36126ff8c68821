// Package main is the CLI entry point for netmenu.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/netmenu/internal/infra"
	"github.com/eliteGoblin/netmenu/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

// exitError carries a process exit status through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(os.Stderr, "netmenu:", exitErr.err)
		}
		os.Exit(exitErr.code)
	}
	fmt.Fprintln(os.Stderr, "netmenu:", err)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "netmenu",
	Short: "dmenu launcher for VPN exit nodes, Wi-Fi, Bluetooth and custom actions",
	Long: `netmenu gathers tailscale exit nodes, Wi-Fi networks, Bluetooth devices and the
actions listed in the config file, shows them in dmenu (or any compatible picker),
and runs the one you choose.

Backends that are not installed or not running are skipped.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runMenu,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the menu entries without showing the picker",
	Long:  `Queries every backend and prints the merged, ordered menu one entry per line.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath    string
	wifiInterface string
	verbose       bool
	logFile       string
	jsonOutput    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/network-dmenu/config.toml)")
	rootCmd.PersistentFlags().StringVar(&wifiInterface, "wifi-interface", "", "Wi-Fi interface (overrides wifi_interface)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	a, err := buildApp(logger)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	outcome := runCycles(cmd.Context(), a.dispatcher, maxCredentialAttempts, logger)
	report(outcome, a.notifier, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if code := usecase.ExitCode(outcome); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	logger := createLogger()
	defer func() { _ = logger.Sync() }()

	a, err := buildApp(logger)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	out := cmd.OutOrStdout()
	for _, action := range a.dispatcher.Collect(cmd.Context()) {
		fmt.Fprintln(out, action.Display)
	}
	return nil
}

func createLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	if logFile != "" {
		path := infra.ExpandHome(logFile)
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
	}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if the log file cannot be opened
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Fprintf(cmd.OutOrStdout(), `{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "netmenu %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
