package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/eliteGoblin/netmenu/internal/backend"
	"github.com/eliteGoblin/netmenu/internal/config"
	"github.com/eliteGoblin/netmenu/internal/domain"
	"github.com/eliteGoblin/netmenu/internal/infra"
	"github.com/eliteGoblin/netmenu/internal/tui"
	"github.com/eliteGoblin/netmenu/internal/usecase"
)

// maxCredentialAttempts bounds how often the menu is shown again after a rejected
// Wi-Fi passphrase.
const maxCredentialAttempts = 3

// app is the fully wired set of components for one invocation.
type app struct {
	cfg        config.Config
	registry   *backend.Registry
	dispatcher *usecase.Dispatcher
	notifier   domain.Notifier
}

func resolveConfigPath() string {
	if configPath == "" {
		return infra.DefaultConfigPath()
	}
	return infra.ExpandHome(configPath)
}

func buildApp(logger *zap.Logger) (*app, error) {
	path := resolveConfigPath()
	cfg, created, err := config.LoadOrCreate(path)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("wrote default config", zap.String("path", path))
	}
	if wifiInterface != "" {
		cfg.WifiInterface = wifiInterface
	}
	iface := infra.WirelessInterface(cfg.WifiInterface)
	logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("wifi_interface", iface),
		zap.String("picker", cfg.Picker))

	// Queries parse tool output, so they run with LC_ALL=C; anything the user
	// sees runs in their own locale.
	runner := infra.NewCommandRunner()
	interactive := infra.NewInteractiveRunner()
	procs := infra.NewProcessManager()
	notifier := infra.NewNotifier(cfg.Notifications)
	prompter := newSecretPrompter(interactive, stdinIsTerminal())

	registry := backend.NewRegistry(
		backend.NewTailscaleExitNodes(runner, cfg.ExitNodeAllowLANAccess, logger),
		backend.NewTailscaleControl(runner),
		backend.SelectWifi(
			backend.NewNetworkManager(runner, procs, prompter, notifier, iface, logger),
			backend.NewIWD(runner, procs, prompter, notifier, iface, logger),
		),
		backend.NewBluetooth(runner, procs),
		backend.NewSystem(interactive),
	)
	logger.Debug("backends registered", zap.Strings("backends", registry.List()))

	executor := infra.NewExecutor(interactive, registry, logger)
	if cfg.CheckMullvad {
		executor.OnApply(mullvadHook(infra.NewMullvadChecker(), notifier, logger))
	}

	picker, err := newPicker(cfg, interactive, stdinIsTerminal(), logger)
	if err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}

	dispatcher := usecase.NewDispatcher(
		config.NewStaticSource(cfg.Actions),
		registry,
		picker,
		executor,
		cfg.BackendTimeout(),
		logger,
	)
	return &app{cfg: cfg, registry: registry, dispatcher: dispatcher, notifier: notifier}, nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newPicker resolves the configured picker mode. auto prefers the external program
// and falls back to the terminal list when it is missing and stdin is a TTY.
func newPicker(cfg config.Config, runner domain.CommandRunner, tty bool, logger *zap.Logger) (domain.Picker, error) {
	mode := cfg.Picker
	if mode == config.PickerAuto {
		mode = config.PickerExternal
		if !runner.LookPath(cfg.DmenuCmd) && tty {
			mode = config.PickerTerminal
		}
	}
	if mode == config.PickerTerminal {
		return tui.NewPicker("netmenu"), nil
	}
	return infra.NewExternalPicker(runner, cfg.DmenuCmd, cfg.DmenuArgs, logger)
}

// newSecretPrompter prefers pinentry; the terminal prompt is only usable from a TTY.
func newSecretPrompter(runner domain.CommandRunner, tty bool) domain.SecretPrompter {
	pin := infra.NewPinentryPrompter(runner, infra.DefaultPinentry)
	if pin.Available() {
		return pin
	}
	if tty {
		return tui.NewSecretPrompt()
	}
	return nil
}

// mullvadHook reports whether traffic leaves through Mullvad after a VPN or Wi-Fi change.
func mullvadHook(checker *infra.MullvadChecker, notifier domain.Notifier, logger *zap.Logger) infra.AfterApplyFunc {
	return func(ctx context.Context, b domain.Backend, target string, err error) {
		if err != nil {
			return
		}
		switch b.Source() {
		case domain.SourceExitNode, domain.SourceWifi:
		default:
			return
		}
		verdict, cerr := checker.Check(ctx)
		if cerr != nil {
			logger.Warn("mullvad check failed", zap.Error(cerr))
			return
		}
		logger.Info("mullvad check", zap.String("target", target), zap.String("result", verdict))
		_ = notifier.Notify("Mullvad", verdict)
	}
}

// cycleRunner runs one selection/execution cycle.
type cycleRunner interface {
	Run(ctx context.Context) *domain.Outcome
}

// runCycles shows the menu again after a rejected passphrase, up to attempts cycles.
func runCycles(ctx context.Context, d cycleRunner, attempts int, logger *zap.Logger) *domain.Outcome {
	var outcome *domain.Outcome
	for attempt := 1; attempt <= attempts; attempt++ {
		outcome = d.Run(ctx)
		if outcome.State != domain.StateFailed || !errors.Is(outcome.Err, domain.ErrWrongCredentials) {
			return outcome
		}
		logger.Info("passphrase rejected, showing menu again", zap.Int("attempt", attempt))
	}
	return outcome
}

// report prints the outcome; failures also go to a desktop notification since dmenu
// usually runs without a visible terminal.
func report(outcome *domain.Outcome, notifier domain.Notifier, stdout, stderr io.Writer) {
	if outcome == nil {
		return
	}
	switch outcome.State {
	case domain.StateSucceeded:
		if out := strings.TrimRight(outcome.Output, "\n"); out != "" {
			fmt.Fprintln(stdout, out)
		}
	case domain.StateFailed:
		label := "menu"
		if outcome.Action != nil {
			label = outcome.Action.Display
		}
		msg := fmt.Sprintf("%s: %v", label, outcome.Err)
		fmt.Fprintln(stderr, "netmenu:", msg)
		if notifier != nil {
			_ = notifier.Notify("netmenu", msg)
		}
	}
}
