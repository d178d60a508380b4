package contracts

import "fmt"

// DeviceKind tells MIDI inputs from audio outputs.
type DeviceKind uint8

const (
	MIDIInput DeviceKind = iota
	AudioOutput
)

func (k DeviceKind) String() string {
	if k == AudioOutput {
		return "audio-out"
	}
	return "midi-in"
}

// DeviceInfo describes a host device that the engine can open.
type DeviceInfo struct {
	ID           int        // Index accepted by Transport.Open.
	Kind         DeviceKind // MIDI input or audio output.
	Name         string     // Device name.
	Manufacturer string     // Device manufacturer, when the host reports one.
	EntityName   string     // Name of the entity to which the device belongs.
}

func (d DeviceInfo) String() string {
	if d.Manufacturer == "" {
		return fmt.Sprintf("[%d] %s", d.ID, d.Name)
	}
	return fmt.Sprintf("[%d] %s (%s)", d.ID, d.Name, d.Manufacturer)
}
