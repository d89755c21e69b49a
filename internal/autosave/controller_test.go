package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSaver counts saves and lets tests block a save mid-flight.
type fakeSaver struct {
	mu       sync.Mutex
	snapshot []byte
	saveErr  error
	saves    atomic.Int32
	gate     chan struct{} // when non-nil, Save blocks until closed
}

func (f *fakeSaver) setSnapshot(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot = b
}

func (f *fakeSaver) Snapshot() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.snapshot...), nil
}

func (f *fakeSaver) Save(context.Context) error {
	f.mu.Lock()
	gate := f.gate
	err := f.saveErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return err
	}
	f.saves.Add(1)
	return nil
}

type fakeNotifier struct {
	notices atomic.Int32
}

func (f *fakeNotifier) NotifySaveFailed(context.Context, error) {
	f.notices.Add(1)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestBurstCoalescesIntoOneSave(t *testing.T) {
	saver := &fakeSaver{snapshot: []byte("v1")}
	c := New(saver, nil, 30*time.Millisecond, nil)
	defer c.Close()

	for n := 0; n < 10; n++ {
		c.Schedule()
		time.Sleep(2 * time.Millisecond)
	}

	waitFor(t, 2*time.Second, func() bool { return saver.saves.Load() == 1 })
	// No trailing extra save.
	time.Sleep(100 * time.Millisecond)
	if got := saver.saves.Load(); got != 1 {
		t.Errorf("saves = %d, want 1", got)
	}
}

func TestCleanSnapshotSkipsSave(t *testing.T) {
	saver := &fakeSaver{snapshot: []byte("v1")}
	c := New(saver, nil, 10*time.Millisecond, nil)
	defer c.Close()
	c.MarkSaved()

	c.Schedule()
	time.Sleep(100 * time.Millisecond)
	if got := saver.saves.Load(); got != 0 {
		t.Errorf("saves = %d, want 0 for unchanged snapshot", got)
	}

	saver.setSnapshot([]byte("v2"))
	c.Schedule()
	waitFor(t, 2*time.Second, func() bool { return saver.saves.Load() == 1 })
}

func TestChangeDuringSaveQueuesExactlyOneFollowUp(t *testing.T) {
	gate := make(chan struct{})
	saver := &fakeSaver{snapshot: []byte("v1"), gate: gate}
	c := New(saver, nil, 5*time.Millisecond, nil)

	c.Schedule()
	// Let the first save start and park on the gate.
	time.Sleep(50 * time.Millisecond)

	saver.setSnapshot([]byte("v2"))
	for n := 0; n < 5; n++ {
		c.Schedule()
	}

	saver.mu.Lock()
	saver.gate = nil
	saver.mu.Unlock()
	close(gate)

	waitFor(t, 2*time.Second, func() bool { return saver.saves.Load() == 2 })
	time.Sleep(100 * time.Millisecond)
	if got := saver.saves.Load(); got != 2 {
		t.Errorf("saves = %d, want first save plus one follow-up", got)
	}
	c.Close()
}

func TestFailureNotifiedOncePerStreak(t *testing.T) {
	saver := &fakeSaver{snapshot: []byte("v1"), saveErr: errors.New("disk full")}
	notifier := &fakeNotifier{}
	c := New(saver, notifier, 5*time.Millisecond, nil)
	defer c.Close()

	c.Schedule()
	waitFor(t, 2*time.Second, func() bool { return notifier.notices.Load() == 1 })

	// Further failures stay quiet.
	saver.setSnapshot([]byte("v2"))
	c.Schedule()
	time.Sleep(100 * time.Millisecond)
	if got := notifier.notices.Load(); got != 1 {
		t.Fatalf("notices = %d, want 1", got)
	}

	// A success resets the streak; the next failure notifies again.
	saver.mu.Lock()
	saver.saveErr = nil
	saver.mu.Unlock()
	saver.setSnapshot([]byte("v3"))
	c.Schedule()
	waitFor(t, 2*time.Second, func() bool { return saver.saves.Load() == 1 })

	saver.mu.Lock()
	saver.saveErr = errors.New("disk full again")
	saver.mu.Unlock()
	saver.setSnapshot([]byte("v4"))
	c.Schedule()
	waitFor(t, 2*time.Second, func() bool { return notifier.notices.Load() == 2 })
}

func TestFlushSavesSynchronously(t *testing.T) {
	saver := &fakeSaver{snapshot: []byte("v1")}
	c := New(saver, nil, time.Hour, nil)
	defer c.Close()

	c.Schedule() // armed far in the future
	c.Flush(context.Background())
	if got := saver.saves.Load(); got != 1 {
		t.Errorf("saves = %d, want 1 immediately after Flush", got)
	}
}

func TestDisabledControllerNeverSaves(t *testing.T) {
	saver := &fakeSaver{snapshot: []byte("v1")}
	c := New(saver, nil, 5*time.Millisecond, nil)
	c.SetEnabled(false)

	c.Schedule()
	time.Sleep(100 * time.Millisecond)
	if got := saver.saves.Load(); got != 0 {
		t.Errorf("saves = %d, want 0", got)
	}
}
