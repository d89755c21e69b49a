package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"scenedeck/internal/logging"
)

// ErrConfirmRequired is returned by commands whose reversal needs an
// explicit user confirmation that was not supplied.
var ErrConfirmRequired = errors.New("confirmation required")

// Command is a single reversible mutation. Execute applies it, Undo
// restores the state Execute replaced. Implementations snapshot whatever
// they need at construction or during Execute; the engine never inspects
// their internals.
type Command interface {
	Description() string
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
}

// CommandError wraps a failure from a command, carrying which direction
// was being applied.
type CommandError struct {
	Op          string // "execute", "undo" or "redo"
	Description string
	Err         error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Description, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// DefaultMaxDepth bounds the undo stack when the caller does not pick one.
const DefaultMaxDepth = 50

// Engine owns the past and future command stacks. A successful Execute
// pushes onto past and clears future; Undo moves a command past -> future,
// Redo the reverse. All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	past     []Command
	future   []Command
	maxDepth int
	logger   *slog.Logger
	onChange func()
}

// NewEngine builds an engine with the given history bound. maxDepth values
// below one fall back to DefaultMaxDepth.
func NewEngine(maxDepth int, logger *slog.Logger) *Engine {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{
		maxDepth: maxDepth,
		logger:   logging.NewComponentLogger(logger, "history"),
	}
}

// SetOnChange registers a callback invoked after every successful mutation
// of the stacks. The autosave controller hangs off this.
func (e *Engine) SetOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// Execute runs the command. On success it lands on the undo stack and any
// redoable future is discarded. On failure the stacks are untouched and
// the error is returned wrapped in a CommandError.
func (e *Engine) Execute(ctx context.Context, cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := cmd.Execute(ctx); err != nil {
		e.logger.Error("command failed",
			logging.String("command", cmd.Description()),
			logging.Error(err))
		return &CommandError{Op: "execute", Description: cmd.Description(), Err: err}
	}

	e.past = append(e.past, cmd)
	if len(e.past) > e.maxDepth {
		// Oldest entry drops; its change is now permanent.
		copy(e.past, e.past[1:])
		e.past = e.past[:len(e.past)-1]
	}
	e.future = e.future[:0]

	e.logger.Debug("command executed",
		logging.String("command", cmd.Description()),
		logging.Int("undo_depth", len(e.past)))
	e.notifyLocked()
	return nil
}

// Undo reverses the most recent command. An empty undo stack is a warned
// no-op, not an error. If the command's Undo fails it goes back on the
// undo stack so the user can retry.
func (e *Engine) Undo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.past) == 0 {
		e.logger.Warn("nothing to undo")
		return nil
	}

	cmd := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]

	if err := cmd.Undo(ctx); err != nil {
		e.past = append(e.past, cmd)
		e.logger.Error("undo failed",
			logging.String("command", cmd.Description()),
			logging.Error(err))
		return &CommandError{Op: "undo", Description: cmd.Description(), Err: err}
	}

	e.future = append(e.future, cmd)
	e.logger.Debug("command undone", logging.String("command", cmd.Description()))
	e.notifyLocked()
	return nil
}

// Redo re-applies the most recently undone command. Mirrors Undo: empty
// stack warns, a failed Execute puts the command back on the redo stack.
func (e *Engine) Redo(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.future) == 0 {
		e.logger.Warn("nothing to redo")
		return nil
	}

	cmd := e.future[len(e.future)-1]
	e.future = e.future[:len(e.future)-1]

	if err := cmd.Execute(ctx); err != nil {
		e.future = append(e.future, cmd)
		e.logger.Error("redo failed",
			logging.String("command", cmd.Description()),
			logging.Error(err))
		return &CommandError{Op: "redo", Description: cmd.Description(), Err: err}
	}

	e.past = append(e.past, cmd)
	e.logger.Debug("command redone", logging.String("command", cmd.Description()))
	e.notifyLocked()
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// UndoDescription names the command Undo would reverse, or "" when none.
func (e *Engine) UndoDescription() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.past) == 0 {
		return ""
	}
	return e.past[len(e.past)-1].Description()
}

// RedoDescription names the command Redo would re-apply, or "" when none.
func (e *Engine) RedoDescription() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.future) == 0 {
		return ""
	}
	return e.future[len(e.future)-1].Description()
}

// Depths returns the current undo and redo stack sizes.
func (e *Engine) Depths() (undo, redo int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past), len(e.future)
}

// Clear drops both stacks. Used when a different project is loaded.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.past = nil
	e.future = nil
	e.notifyLocked()
}

func (e *Engine) notifyLocked() {
	if e.onChange != nil {
		e.onChange()
	}
}
