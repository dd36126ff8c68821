// Package usecase contains the selection/execution cycle.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eliteGoblin/netmenu/internal/domain"
)

// DefaultBackendTimeout bounds a single driver query.
const DefaultBackendTimeout = 5 * time.Second

// BackendSet lists the drivers to query, in group order.
type BackendSet interface {
	GetAll() []domain.Backend
}

// Dispatcher runs one aggregation and dispatch cycle.
type Dispatcher struct {
	static   domain.ActionSource
	backends BackendSet
	picker   domain.Picker
	executor domain.Executor
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDispatcher creates the engine. A non-positive timeout uses DefaultBackendTimeout.
func NewDispatcher(
	static domain.ActionSource,
	backends BackendSet,
	picker domain.Picker,
	executor domain.Executor,
	timeout time.Duration,
	logger *zap.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultBackendTimeout
	}
	return &Dispatcher{
		static:   static,
		backends: backends,
		picker:   picker,
		executor: executor,
		timeout:  timeout,
		logger:   logger,
	}
}

// Collect builds the merged, ordered and deduplicated action list. Drivers are queried
// concurrently; a driver that fails or times out contributes nothing.
func (d *Dispatcher) Collect(ctx context.Context) []domain.Action {
	var static []domain.Action
	if d.static != nil {
		static = d.static.Actions()
	}

	var drivers []domain.Backend
	if d.backends != nil {
		drivers = d.backends.GetAll()
	}
	groups := make([][]domain.Action, len(drivers))

	var g errgroup.Group
	for i, b := range drivers {
		g.Go(func() error {
			groups[i] = d.query(ctx, b)
			return nil
		})
	}
	_ = g.Wait()

	return Dedupe(Merge(static, groups...))
}

type listResult struct {
	opts []domain.BackendOption
	err  error
}

// query lists one driver's options under the per-driver timeout. Errors are logged
// and never returned.
func (d *Dispatcher) query(ctx context.Context, b domain.Backend) []domain.Action {
	qctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ch := make(chan listResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- listResult{err: domain.Unavailable(b.ID(), fmt.Sprintf("panic: %v", r))}
			}
		}()
		opts, err := b.ListOptions(qctx)
		ch <- listResult{opts: opts, err: err}
	}()

	var res listResult
	select {
	case res = <-ch:
	case <-qctx.Done():
		res.err = domain.Unavailable(b.ID(), "timed out after "+d.timeout.String())
	}

	if res.err != nil {
		d.logger.Warn("backend skipped",
			zap.String("backend", b.ID()),
			zap.Error(res.err))
		return nil
	}

	actions := make([]domain.Action, 0, len(res.opts))
	for _, a := range NormalizeAll(b, res.opts) {
		if !a.Recipe.Valid() {
			continue
		}
		actions = append(actions, a)
	}
	d.logger.Debug("backend listed",
		zap.String("backend", b.ID()),
		zap.Int("options", len(actions)))
	return actions
}

// Run performs one full cycle: query, present, and execute at most one action.
func (d *Dispatcher) Run(ctx context.Context) *domain.Outcome {
	outcome := &domain.Outcome{State: domain.StateIdle}

	d.transition(outcome, domain.StateQuerying)
	actions := d.Collect(ctx)
	outcome.Offered = len(actions)

	d.transition(outcome, domain.StatePresenting)
	idx, err := d.picker.Choose(ctx, Displays(actions))
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			d.transition(outcome, domain.StateCancelled)
			return outcome
		}
		outcome.Err = err
		d.transition(outcome, domain.StateFailed)
		d.logger.Error("picker failed", zap.Error(err))
		return outcome
	}
	if idx < 0 || idx >= len(actions) {
		d.logger.Debug("selection out of range", zap.Int("index", idx))
		d.transition(outcome, domain.StateCancelled)
		return outcome
	}

	action := actions[idx]
	outcome.Action = &action
	d.transition(outcome, domain.StateSelected)

	d.transition(outcome, domain.StateExecuting)
	start := time.Now()
	outcome.ExecutedAt = start
	output, err := d.executor.Run(ctx, action.Recipe)
	outcome.Output = output
	outcome.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		outcome.Err = err
		d.transition(outcome, domain.StateFailed)
		d.logger.Error("action failed",
			zap.String("action", action.Display),
			zap.String("source", string(action.Source)),
			zap.Error(err))
		return outcome
	}

	d.transition(outcome, domain.StateSucceeded)
	d.logger.Info("action succeeded",
		zap.String("action", action.Display),
		zap.String("source", string(action.Source)),
		zap.Int64("duration_ms", outcome.DurationMs))
	return outcome
}

func (d *Dispatcher) transition(o *domain.Outcome, to domain.State) {
	d.logger.Debug("state transition",
		zap.String("from", string(o.State)),
		zap.String("to", string(to)))
	o.State = to
}

// ExitCode maps an outcome to the process exit status. A failed shell command keeps
// its own status.
func ExitCode(o *domain.Outcome) int {
	if o == nil {
		return 1
	}
	switch o.State {
	case domain.StateSucceeded, domain.StateCancelled:
		return 0
	}
	var execErr *domain.ExecutionError
	if errors.As(o.Err, &execErr) && execErr.ExitCode > 0 {
		return execErr.ExitCode
	}
	return 1
}
