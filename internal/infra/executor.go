package infra

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// BackendLookup resolves a backend by id.
type BackendLookup interface {
	Get(id string) (domain.Backend, bool)
}

// AfterApplyFunc observes every backend apply, successful or not.
type AfterApplyFunc func(ctx context.Context, backend domain.Backend, target string, err error)

// ExecutorImpl implements domain.Executor.
// Shell recipes run through `sh -c`; apply recipes go back to the owning backend.
type ExecutorImpl struct {
	runner     domain.CommandRunner
	backends   BackendLookup
	afterApply []AfterApplyFunc
	logger     *zap.Logger
}

// NewExecutor creates an execution sink.
func NewExecutor(runner domain.CommandRunner, backends BackendLookup, logger *zap.Logger) *ExecutorImpl {
	return &ExecutorImpl{
		runner:   runner,
		backends: backends,
		logger:   logger,
	}
}

// OnApply registers a hook run after every backend apply.
func (e *ExecutorImpl) OnApply(fn AfterApplyFunc) {
	e.afterApply = append(e.afterApply, fn)
}

// Run executes the recipe to completion.
func (e *ExecutorImpl) Run(ctx context.Context, recipe domain.Recipe) (string, error) {
	switch recipe.Kind {
	case domain.RecipeShell:
		return e.runShell(ctx, recipe.Command)
	case domain.RecipeApply:
		return "", e.apply(ctx, recipe.Backend, recipe.Target)
	default:
		return "", fmt.Errorf("unsupported recipe kind %d", recipe.Kind)
	}
}

func (e *ExecutorImpl) runShell(ctx context.Context, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("empty command")
	}

	e.logger.Debug("running shell command", zap.String("cmd", command))
	res, err := e.runner.Run(ctx, nil, "sh", "-c", command)
	if err != nil {
		return "", &domain.ExecutionError{
			Command:  command,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
			Err:      err,
		}
	}
	if !res.Success() {
		return string(res.Stdout), &domain.ExecutionError{
			Command:  command,
			ExitCode: res.ExitCode,
			Stderr:   string(res.Stderr),
		}
	}
	return string(res.Stdout), nil
}

func (e *ExecutorImpl) apply(ctx context.Context, backendID, target string) error {
	b, ok := e.backends.Get(backendID)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownBackend, backendID)
	}

	e.logger.Debug("applying backend option",
		zap.String("backend", backendID),
		zap.String("target", target))
	err := b.Apply(ctx, target)
	for _, fn := range e.afterApply {
		fn(ctx, b, target, err)
	}
	return err
}

// Ensure ExecutorImpl implements domain.Executor.
var _ domain.Executor = (*ExecutorImpl)(nil)
