package engine

// priority orders the engine's scheduled units of work. The render trigger
// must preempt the transmitter, which must preempt the MIDI pump, which must
// preempt housekeeping.
type priority int

const (
	priorityLow priority = iota
	priorityNormal
	priorityHigh
	priorityRealtime
)

func (p priority) String() string {
	switch p {
	case priorityLow:
		return "low"
	case priorityNormal:
		return "normal"
	case priorityHigh:
		return "high"
	case priorityRealtime:
		return "realtime"
	}
	return "unknown"
}
