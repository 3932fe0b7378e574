// Package lock provides an advisory session lock covering the full sync
// session lifetime, so two invocations cannot operate on the same synced
// directory at once.
package lock

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"syscall"
	"time"

	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/arthur-debert/tidesync/pkg/logging"
)

// record is the JSON payload stored in the lock file
type record struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock is a held session lock
type Lock struct {
	path string
}

// Acquire takes the session lock at path. A lock held by a live process
// yields SESSION_LOCKED; a lock left by a dead process is stolen.
func Acquire(path string) (*Lock, error) {
	log := logging.GetLogger("lock")

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			rec := record{PID: os.Getpid(), AcquiredAt: time.Now().UTC()}
			enc := json.NewEncoder(file)
			if encErr := enc.Encode(&rec); encErr != nil {
				file.Close()
				os.Remove(path)
				return nil, errors.Wrap(encErr, errors.ErrInternal, "writing lock record")
			}
			if closeErr := file.Close(); closeErr != nil {
				os.Remove(path)
				return nil, errors.Wrap(closeErr, errors.ErrInternal, "closing lock file")
			}
			log.Debug().Str("path", path).Int("pid", rec.PID).Msg("Session lock acquired")
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrapf(err, errors.ErrInternal, "creating lock at %s", path)
		}

		holder, readErr := readRecord(path)
		if readErr == nil && processAlive(holder.PID) {
			return nil, errors.Newf(errors.ErrSessionLocked,
				"another session (pid %d, since %s) holds %s",
				holder.PID, holder.AcquiredAt.Format(time.RFC3339), path)
		}

		// Unreadable record or dead holder: steal and retry once
		log.Warn().Str("path", path).Msg("Removing stale session lock")
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, errors.Wrapf(rmErr, errors.ErrSessionLocked, "cannot remove stale lock %s", path)
		}
	}
	return nil, errors.Newf(errors.ErrSessionLocked, "could not acquire %s", path)
}

// Release removes the lock file. Safe to call on an already released lock.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		log := logging.GetLogger("lock")
		log.Warn().Err(err).Str("path", l.path).Msg("Failed to release session lock")
	}
}

// IsHeld reports whether a lock file exists at path
func IsHeld(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readRecord(path string) (*record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// processAlive probes the holder with signal 0. On platforms where the
// probe is unsupported the holder is assumed alive, which errs on the
// side of not stealing.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if stderrors.Is(err, os.ErrProcessDone) || stderrors.Is(err, syscall.ESRCH) {
		return false
	}
	// EPERM: the process exists but belongs to another user
	return stderrors.Is(err, syscall.EPERM)
}
