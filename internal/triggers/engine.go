package triggers

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"cerebro/internal/logging"
)

const defaultCommandTimeout = 30 * time.Second

// Engine dispatches observed changes against the loaded rule set and runs
// matching commands.
type Engine struct {
	triggers []Trigger
	logger   *slog.Logger
	timeout  time.Duration

	// Fired is invoked after a trigger's command ran successfully.
	Fired func(trigger Trigger, path string)
	// Failed is invoked when a command cannot be run or exits non-zero.
	// Failures never stop dispatching.
	Failed func(trigger Trigger, path string, err error)
}

// NewEngine builds an Engine around loaded triggers.
func NewEngine(triggers []Trigger, logger *slog.Logger) *Engine {
	return &Engine{
		triggers: triggers,
		logger:   logging.NewComponentLogger(logger, "triggers"),
		timeout:  defaultCommandTimeout,
	}
}

// Triggers returns the loaded rules.
func (e *Engine) Triggers() []Trigger {
	out := make([]Trigger, len(e.triggers))
	copy(out, e.triggers)
	return out
}

// Match returns the rules that would fire for the given change without
// executing anything.
func (e *Engine) Match(kind Kind, path, oldValue, newValue string) []Trigger {
	var matched []Trigger
	for i := range e.triggers {
		if e.triggers[i].ShouldFire(kind, path, oldValue, newValue) {
			matched = append(matched, e.triggers[i])
		}
	}
	return matched
}

// Dispatch runs every matching trigger's command. The path is the full
// entry path, /<module>/<entry>.
func (e *Engine) Dispatch(ctx context.Context, kind Kind, path, oldValue, newValue string) {
	for i := range e.triggers {
		trigger := &e.triggers[i]
		if !trigger.ShouldFire(kind, path, oldValue, newValue) {
			continue
		}

		e.logger.Debug("trigger matched",
			logging.String(logging.FieldTrigger, trigger.Command),
			logging.String("path", path),
			logging.String("old", oldValue),
			logging.String("new", newValue),
		)

		if err := e.execute(ctx, trigger); err != nil {
			logging.ErrorWithContext(e.logger, "trigger command failed", "trigger_failed",
				logging.String(logging.FieldTrigger, trigger.Command),
				logging.String("source", fmt.Sprintf("%s:%d", trigger.Source, trigger.Line)),
				logging.Error(err),
			)
			if e.Failed != nil {
				e.Failed(*trigger, path, err)
			}
			continue
		}

		e.logger.Info("trigger fired",
			logging.String(logging.FieldTrigger, trigger.Command),
			logging.String("path", path),
		)
		if e.Fired != nil {
			e.Fired(*trigger, path)
		}
	}
}

// execute runs the trigger's ';'-chained commands in order, stopping at the
// first failure.
func (e *Engine) execute(ctx context.Context, trigger *Trigger) error {
	for _, raw := range strings.Split(trigger.Command, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		words, err := shellquote.Split(raw)
		if err != nil {
			return fmt.Errorf("split command %q: %w", raw, err)
		}
		if len(words) == 0 {
			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, e.timeout)
		cmd := exec.CommandContext(runCtx, words[0], words[1:]...)
		output, err := cmd.CombinedOutput()
		cancel()
		if err != nil {
			detail := strings.TrimSpace(string(output))
			if detail != "" {
				return fmt.Errorf("run command %q: %w: %s", raw, err, detail)
			}
			return fmt.Errorf("run command %q: %w", raw, err)
		}
	}
	return nil
}
