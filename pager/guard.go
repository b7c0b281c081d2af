// guard.go gives Store the exclusive-access discipline spec.md §5
// describes for the backing file: "single-writer/many-reader", backed
// by an in-process RWMutex. The file-backed variant additionally takes
// an advisory flock(2) on the descriptor, so two OS processes pointed
// at the same index.000 cannot interleave writes -- spec.md §5 only
// specifies single-process cooperative use, so this is extra insurance
// rather than a behavior the spec requires, and it costs nothing beyond
// the syscall the in-process mutex already pays for.
//
// No repo in this retrieval pack locks a page file through
// golang.org/x/sys/unix specifically: teacher's own locking used raw
// package syscall, and the one pack repo that does import x/sys/unix
// (Giulio2002-gdbx) uses it for Mmap/Munmap/Madvise, locking its page
// file with plain syscall.Flock instead. The swap to x/sys/unix here is
// not grounded in a pack precedent; it is picked because it is the
// actively maintained home for the flock constants across unix
// targets, which package syscall is not (see DESIGN.md).
package pager

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sys/unix"
)

// guard is the RWMutex contract Store needs around backend access.
type guard interface {
	Lock() error
	Unlock()
	RLock() error
	RUnlock()
}

// memoryGuard backs an in-memory Store: there is no file descriptor to
// advisory-lock, so this is a bare RWMutex.
type memoryGuard struct {
	mu sync.RWMutex
}

func (g *memoryGuard) Lock() error  { g.mu.Lock(); return nil }
func (g *memoryGuard) Unlock()      { g.mu.Unlock() }
func (g *memoryGuard) RLock() error { g.mu.RLock(); return nil }
func (g *memoryGuard) RUnlock()     { g.mu.RUnlock() }

// newFileGuard returns a guard that also flock(2)s fd, for a
// file-backed Store.
func newFileGuard(fd uintptr) guard {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		panic(fmt.Sprintf("pager: advisory file locking unsupported on %s", runtime.GOOS))
	}
	return &flockGuard{fd: int(fd)}
}

// flockGuard pairs an in-process RWMutex (so goroutines within this
// program serialize the same way memoryGuard would) with an advisory
// flock on fd (so other processes do too). Unlocking flock(2) can fail;
// this implementation panics on that, same as the condition is fatal
// either way -- there is no way to recover a consistent lock state.
type flockGuard struct {
	fd int
	mu sync.RWMutex
}

func (g *flockGuard) Lock() error {
	g.mu.Lock()
	if err := unix.Flock(g.fd, unix.LOCK_EX); err != nil {
		g.mu.Unlock()
		return fmt.Errorf("pager: flock LOCK_EX: %w", err)
	}
	return nil
}

func (g *flockGuard) Unlock() {
	if err := unix.Flock(g.fd, unix.LOCK_UN); err != nil {
		panic(fmt.Sprintf("pager: flock LOCK_UN: %s", err))
	}
	g.mu.Unlock()
}

func (g *flockGuard) RLock() error {
	g.mu.RLock()
	if err := unix.Flock(g.fd, unix.LOCK_SH); err != nil {
		g.mu.RUnlock()
		return fmt.Errorf("pager: flock LOCK_SH: %w", err)
	}
	return nil
}

func (g *flockGuard) RUnlock() {
	if err := unix.Flock(g.fd, unix.LOCK_UN); err != nil {
		panic(fmt.Sprintf("pager: flock RUnlock LOCK_UN: %s", err))
	}
	g.mu.RUnlock()
}
