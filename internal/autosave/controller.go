package autosave

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"scenedeck/internal/logging"
)

// Saver writes the project to disk. Snapshot returns the bytes the dirty
// check compares; two equal snapshots mean nothing worth saving changed,
// so UI-only churn must not leak into it.
type Saver interface {
	Snapshot() ([]byte, error)
	Save(ctx context.Context) error
}

// Notifier surfaces a persistent save failure to the user.
type Notifier interface {
	NotifySaveFailed(ctx context.Context, err error)
}

// Controller debounces Schedule calls into saves. Concurrency discipline:
// a save never overlaps another save; changes arriving mid-save set a
// pending flag that triggers exactly one follow-up save when the in-flight
// one finishes, regardless of how many changes arrived.
type Controller struct {
	saver    Saver
	notifier Notifier
	logger   *slog.Logger
	debounce time.Duration

	mu             sync.Mutex
	enabled        bool
	timer          *time.Timer
	saving         bool
	pending        bool
	lastSaved      []byte
	failureNoticed bool

	// wg tracks in-flight save goroutines so Close can drain them.
	wg sync.WaitGroup
}

// New builds a controller. notifier may be nil; failures are then only
// logged.
func New(saver Saver, notifier Notifier, debounce time.Duration, logger *slog.Logger) *Controller {
	return &Controller{
		saver:    saver,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "autosave"),
		debounce: debounce,
		enabled:  true,
	}
}

// SetEnabled toggles autosaving. Disabling cancels any armed timer but
// does not interrupt an in-flight save.
func (c *Controller) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
	if !enabled && c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// MarkSaved seeds the clean baseline, typically right after a load or an
// explicit manual save.
func (c *Controller) MarkSaved() {
	snapshot, err := c.saver.Snapshot()
	if err != nil {
		return
	}
	c.mu.Lock()
	c.lastSaved = snapshot
	c.mu.Unlock()
}

// Schedule notes that state changed. The save fires one debounce window
// after the burst's last call.
func (c *Controller) Schedule() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if c.saving {
		c.pending = true
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

func (c *Controller) fire() {
	c.mu.Lock()
	c.timer = nil
	if c.saving {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.saving = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.saveLoop(context.Background())
	}()
}

// saveLoop performs the save and then drains the pending flag: each queued
// follow-up becomes exactly one more save pass.
func (c *Controller) saveLoop(ctx context.Context) {
	for {
		c.saveOnce(ctx)

		c.mu.Lock()
		if !c.pending {
			c.saving = false
			c.mu.Unlock()
			return
		}
		c.pending = false
		c.mu.Unlock()
	}
}

func (c *Controller) saveOnce(ctx context.Context) {
	snapshot, err := c.saver.Snapshot()
	if err != nil {
		c.reportFailure(ctx, err)
		return
	}

	c.mu.Lock()
	clean := c.lastSaved != nil && bytes.Equal(snapshot, c.lastSaved)
	c.mu.Unlock()
	if clean {
		c.logger.Debug("skipping save, no relevant changes")
		return
	}

	if err := c.saver.Save(ctx); err != nil {
		c.reportFailure(ctx, err)
		return
	}

	c.mu.Lock()
	c.lastSaved = snapshot
	c.failureNoticed = false
	c.mu.Unlock()
	c.logger.Debug("autosaved", logging.Int("snapshot_bytes", len(snapshot)))
}

// reportFailure notifies the user once per failure streak; repeats only
// log until a save succeeds again.
func (c *Controller) reportFailure(ctx context.Context, err error) {
	c.mu.Lock()
	first := !c.failureNoticed
	c.failureNoticed = true
	c.mu.Unlock()

	logging.WarnWithContext(c.logger, "autosave failed", "autosave_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "save manually and check disk space"),
		logging.String(logging.FieldImpact, "recent edits are not persisted"))
	if first && c.notifier != nil {
		c.notifier.NotifySaveFailed(ctx, err)
	}
}

// Flush cancels any armed timer and saves synchronously if dirty. Used on
// shutdown and for explicit manual saves.
func (c *Controller) Flush(ctx context.Context) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	alreadySaving := c.saving
	if alreadySaving {
		c.pending = true
	} else {
		c.saving = true
	}
	c.mu.Unlock()

	if alreadySaving {
		// The in-flight save's follow-up pass will pick the change up.
		c.wg.Wait()
		return
	}
	c.saveLoop(ctx)
}

// Close disables the controller and waits for any in-flight save.
func (c *Controller) Close() {
	c.SetEnabled(false)
	c.wg.Wait()
}
