package service

import "sync"

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// PackageLocks serializes mutating operations per package. The ledger
// recomputation and the state-machine guard must run as one atomic unit per
// package; the request/response transport gives no such guarantee, so both
// services lock here before touching a package.
type PackageLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewPackageLocks creates an empty lock table.
func NewPackageLocks() *PackageLocks {
	return &PackageLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the package's mutex and returns its release function.
func (l *PackageLocks) Lock(packageID int64) func() {
	l.mu.Lock()
	m, ok := l.locks[packageID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[packageID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
