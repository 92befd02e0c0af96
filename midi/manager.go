package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"theory-keys/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
	settle      time.Duration
	filters     []string

	// listPorts is swapped out in tests
	listPorts func() []drivers.In
	open      func(id string, in drivers.In, settle time.Duration) (Controller, error)
}

// NewDeviceManager creates a device manager. filters are case-insensitive
// port name substrings; with none, every input port is treated as a keyboard.
func NewDeviceManager(filters []string, settle time.Duration) *DeviceManager {
	lowered := make([]string, 0, len(filters))
	for _, f := range filters {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			lowered = append(lowered, f)
		}
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		settle:      settle,
		filters:     lowered,
		listPorts:   func() []drivers.In { return gomidi.GetInPorts() },
		open: func(id string, in drivers.In, settle time.Duration) (Controller, error) {
			return NewKeyboardController(id, in, settle)
		},
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	snapshot := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		snapshot[k] = v
	}
	return snapshot
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- dm.listPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		if !dm.wants(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := dm.open(id, inPort, dm.settle)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		debug.Log("midi", "connected %s", id)
		dm.events <- DeviceEvent{
			Type:       DeviceConnected,
			Controller: kb,
			ID:         id,
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		c := dm.controllers[id]
		c.Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) wants(name string) bool {
	name = strings.ToLower(name)
	// rtmidi exposes its own loopback ports on some systems
	if strings.Contains(name, "midi through") {
		return false
	}
	if len(dm.filters) == 0 {
		return true
	}
	for _, f := range dm.filters {
		if strings.Contains(name, f) {
			return true
		}
	}
	return false
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// PortNames lists input and output port names, with the same hang guard
// as scan.
func PortNames(timeout time.Duration) (ins, outs []string, ok bool) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		for _, p := range r.ins {
			ins = append(ins, p.String())
		}
		for _, p := range r.outs {
			outs = append(outs, p.String())
		}
		return ins, outs, true
	case <-time.After(timeout):
		return nil, nil, false
	}
}
