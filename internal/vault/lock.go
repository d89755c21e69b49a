package vault

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrVaultLocked is returned when another process holds the vault lock.
var ErrVaultLocked = errors.New("vault is locked by another process")

// Lock guards a vault against concurrent writers from other processes. The
// in-process write path is serialized by the command engine; the lock extends
// that guarantee across processes.
type Lock struct {
	flk *flock.Flock
}

// AcquireLock takes the vault write lock without blocking.
func AcquireLock(layout Layout) (*Lock, error) {
	flk := flock.New(layout.LockPath())
	ok, err := flk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire vault lock: %w", err)
	}
	if !ok {
		return nil, ErrVaultLocked
	}
	return &Lock{flk: flk}, nil
}

// Release frees the vault lock.
func (l *Lock) Release() error {
	if l == nil || l.flk == nil {
		return nil
	}
	return l.flk.Unlock()
}
