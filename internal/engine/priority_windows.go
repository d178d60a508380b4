//go:build windows

package engine

import "golang.org/x/sys/windows"

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadPriority = kernel32.NewProc("SetThreadPriority")
)

var threadPriorities = map[priority]int32{
	priorityLow:      -2, // THREAD_PRIORITY_LOWEST
	priorityNormal:   0,  // THREAD_PRIORITY_NORMAL
	priorityHigh:     2,  // THREAD_PRIORITY_HIGHEST
	priorityRealtime: 15, // THREAD_PRIORITY_TIME_CRITICAL
}

// setThreadPriority adjusts the calling OS thread. The caller must hold
// runtime.LockOSThread.
func setThreadPriority(p priority) error {
	level := threadPriorities[p]
	r1, _, err := procSetThreadPriority.Call(uintptr(windows.CurrentThread()), uintptr(level))
	if r1 == 0 {
		return err
	}
	return nil
}
