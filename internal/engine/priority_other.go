//go:build !linux && !windows

package engine

// setThreadPriority is a no-op where the OS offers no per-thread control
// reachable without cgo.
func setThreadPriority(priority) error { return nil }
