package midi

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bep/debounce"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"theory-keys/debug"
)

// DefaultSettle is how long the held set must be quiet before Changes
// reports it, so a chord struck with slightly uneven timing lands once.
const DefaultSettle = 30 * time.Millisecond

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu       sync.Mutex
	held     map[uint8]bool
	closed   bool
	debounce func(f func())

	noteChan   chan NoteEvent
	changeChan chan []string
}

// NewKeyboardController creates a keyboard controller (input only). A nil
// inPort gives a controller fed only through Handle.
func NewKeyboardController(id string, inPort drivers.In, settle time.Duration) (*KeyboardController, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	kb := &KeyboardController{
		id:         id,
		inPort:     inPort,
		held:       make(map[uint8]bool),
		debounce:   debounce.New(settle),
		noteChan:   make(chan NoteEvent, 32),
		changeChan: make(chan []string, 1),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.Handle(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

// Changes delivers the held set after it settles. Only the newest set is
// kept if the reader falls behind.
func (kb *KeyboardController) Changes() <-chan []string {
	return kb.changeChan
}

// Handle feeds one message through the controller
func (kb *KeyboardController) Handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	var ev NoteEvent
	switch {
	case msg.GetNoteStart(&channel, &note, &velocity):
		ev = NoteEvent{Note: note, Velocity: velocity, Channel: channel}
	case msg.GetNoteEnd(&channel, &note):
		ev = NoteEvent{Note: note, Channel: channel}
	default:
		return
	}

	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return
	}
	if ev.Velocity > 0 {
		kb.held[ev.Note] = true
	} else {
		delete(kb.held, ev.Note)
	}
	select {
	case kb.noteChan <- ev:
	default:
	}
	kb.mu.Unlock()

	debug.LogEvery(16, "midi", "%s note %s vel %d", kb.id, NoteName(ev.Note), ev.Velocity)
	kb.debounce(kb.publish)
}

// Held returns the currently held notes, lowest first, e.g. ["C4", "E4"]
func (kb *KeyboardController) Held() []string {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.heldLocked()
}

func (kb *KeyboardController) heldLocked() []string {
	notes := make([]int, 0, len(kb.held))
	for n := range kb.held {
		notes = append(notes, int(n))
	}
	sort.Ints(notes)

	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = NoteName(uint8(n))
	}
	return names
}

func (kb *KeyboardController) publish() {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	held := kb.heldLocked()
	select {
	case <-kb.changeChan:
	default:
	}
	kb.changeChan <- held
}

// Close stops the port listener once. Later calls are no-ops.
func (kb *KeyboardController) Close() error {
	kb.mu.Lock()
	if kb.closed {
		kb.mu.Unlock()
		return nil
	}
	kb.closed = true
	close(kb.noteChan)
	close(kb.changeChan)
	stop := kb.stopFunc
	kb.mu.Unlock()

	// outside the lock, the listener callback takes it
	if stop != nil {
		stop()
	}
	return nil
}
