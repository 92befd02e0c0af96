package midi

import "fmt"

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8 // 0 means released
	Channel  uint8
}

// Controller is the interface for MIDI input devices
type Controller interface {
	ID() string
	Type() ControllerType

	// Raw note input
	NoteEvents() <-chan NoteEvent

	// Held notes, coalesced (see KeyboardController.Changes)
	Changes() <-chan []string

	Close() error
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName converts a MIDI note number to a name with octave ("C4" for 60)
func NoteName(note uint8) string {
	octave := int(note)/12 - 1
	return fmt.Sprintf("%s%d", noteNames[note%12], octave)
}

// NoteNumber is the inverse of NoteName for a pitch class index and octave.
// It reports false when the result is outside 0-127.
func NoteNumber(pitchClass, octave int) (uint8, bool) {
	n := (octave+1)*12 + pitchClass
	if pitchClass < 0 || pitchClass > 11 || n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}
