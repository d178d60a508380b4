//go:build linux

package engine

import "golang.org/x/sys/unix"

var niceLevels = map[priority]int{
	priorityLow:      10,
	priorityNormal:   0,
	priorityHigh:     -10,
	priorityRealtime: -15,
}

// setThreadPriority renices the calling OS thread. The caller must hold
// runtime.LockOSThread. Raising priority needs CAP_SYS_NICE.
func setThreadPriority(p priority) error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), niceLevels[p])
}
