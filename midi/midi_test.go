package midi

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestNoteName(t *testing.T) {
	assert.Equal(t, "C4", NoteName(60))
	assert.Equal(t, "A4", NoteName(69))
	assert.Equal(t, "C-1", NoteName(0))
	assert.Equal(t, "C#3", NoteName(49))
}

func TestNoteNumber(t *testing.T) {
	n, ok := NoteNumber(0, 4)
	assert.True(t, ok)
	assert.Equal(t, uint8(60), n)

	_, ok = NoteNumber(0, 10)
	assert.False(t, ok)
	_, ok = NoteNumber(12, 4)
	assert.False(t, ok)
}

func TestChordNumbers(t *testing.T) {
	assert.Equal(t, []uint8{60, 64, 67}, ChordNumbers([]string{"C", "E", "G"}, 4))
	assert.Equal(t, []uint8{48, 76}, ChordNumbers([]string{"C3", "E5", "H", "Db", "C3"}, 4))
	assert.Empty(t, ChordNumbers(nil, 4))
}

func TestExportSMF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSMF(&buf, []string{"C", "E", "G"}, ExportOptions{Name: "C Major", BPM: 90, Octave: 4}))

	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Tracks, 1)

	tempos := s.TempoChanges()
	require.NotEmpty(t, tempos)
	assert.InDelta(t, 90, tempos[0].BPM, 0.01)

	var on, off []uint8
	var tick uint32
	var offTick uint32
	for _, ev := range s.Tracks[0] {
		tick += ev.Delta
		var ch, key, vel uint8
		switch {
		case ev.Message.GetNoteStart(&ch, &key, &vel):
			on = append(on, key)
			assert.Equal(t, uint8(100), vel)
			assert.Zero(t, tick)
		case ev.Message.GetNoteEnd(&ch, &key):
			off = append(off, key)
			offTick = tick
		}
	}
	assert.Equal(t, []uint8{60, 64, 67}, on)
	assert.ElementsMatch(t, on, off)
	assert.Equal(t, uint32(4*ticksPerQuarter), offTick)
}

func TestExportSMFSilent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSMF(&buf, []string{"H"}, ExportOptions{}))
	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	for _, ev := range s.Tracks[0] {
		var ch, key, vel uint8
		assert.False(t, ev.Message.GetNoteStart(&ch, &key, &vel))
	}
}

func TestKeyboardHeldNotes(t *testing.T) {
	kb, err := NewKeyboardController("test", nil, 5*time.Millisecond)
	require.NoError(t, err)
	defer kb.Close()

	kb.Handle(gomidi.NoteOn(0, 64, 90))
	kb.Handle(gomidi.NoteOn(0, 60, 90))
	kb.Handle(gomidi.NoteOn(0, 67, 90))
	kb.Handle(gomidi.ControlChange(0, 64, 127))
	assert.Equal(t, []string{"C4", "E4", "G4"}, kb.Held())

	select {
	case held := <-kb.Changes():
		assert.Equal(t, []string{"C4", "E4", "G4"}, held)
	case <-time.After(time.Second):
		t.Fatal("no settled change")
	}

	kb.Handle(gomidi.NoteOff(0, 64))
	kb.Handle(gomidi.NoteOn(0, 60, 0)) // running-status style release
	assert.Equal(t, []string{"G4"}, kb.Held())

	ev := <-kb.NoteEvents()
	assert.Equal(t, NoteEvent{Note: 64, Velocity: 90}, ev)
}

func TestKeyboardClose(t *testing.T) {
	kb, err := NewKeyboardController("test", nil, 0)
	require.NoError(t, err)
	require.NoError(t, kb.Close())
	require.NoError(t, kb.Close())

	assert.NotPanics(t, func() { kb.Handle(gomidi.NoteOn(0, 60, 1)) })
	_, open := <-kb.Changes()
	assert.False(t, open)
}

func TestDeviceFilters(t *testing.T) {
	all := NewDeviceManager(nil, 0)
	assert.True(t, all.wants("Arturia KeyStep 32"))
	assert.False(t, all.wants("Midi Through Port-0"))

	some := NewDeviceManager([]string{" keystep ", ""}, 0)
	assert.True(t, some.wants("Arturia KeyStep 32"))
	assert.False(t, some.wants("Launchpad X LPX MIDI"))
}

func TestExportOptionsDefaults(t *testing.T) {
	o := ExportOptions{}.withDefaults()
	assert.Equal(t, 0, o.Octave)
	assert.Equal(t, 4, o.Beats)

	assert.Equal(t, DefaultOctave, ExportOptions{Octave: -1}.withDefaults().Octave)
	assert.Equal(t, MaxBeats, ExportOptions{Beats: 1 << 23}.withDefaults().Beats)
}

func TestExportSMFOctaveZero(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSMF(&buf, []string{"C"}, ExportOptions{Octave: 0}))
	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var keys []uint8
	for _, ev := range s.Tracks[0] {
		var ch, key, vel uint8
		if ev.Message.GetNoteStart(&ch, &key, &vel) {
			keys = append(keys, key)
		}
	}
	assert.Equal(t, []uint8{12}, keys)
}

func TestExportSMFLongChord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSMF(&buf, []string{"C4"}, ExportOptions{Beats: 1 << 23}))
	s, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	var tick, offTick uint32
	for _, ev := range s.Tracks[0] {
		tick += ev.Delta
		var ch, key uint8
		if ev.Message.GetNoteEnd(&ch, &key) {
			offTick = tick
		}
	}
	assert.Equal(t, uint32(MaxBeats*ticksPerQuarter), offTick)
}

func TestKeyboardCloseStopsListenerOnce(t *testing.T) {
	kb, err := NewKeyboardController("test", nil, 0)
	require.NoError(t, err)
	stops := 0
	kb.stopFunc = func() { stops++ }

	require.NoError(t, kb.Close())
	require.NoError(t, kb.Close())
	assert.Equal(t, 1, stops)
}

type fakePort struct {
	drivers.In
	name string
}

func (p fakePort) String() string { return p.name }

type fakeController struct {
	id     string
	closes int
}

func (c *fakeController) ID() string                   { return c.id }
func (c *fakeController) Type() ControllerType         { return ControllerKeyboard }
func (c *fakeController) NoteEvents() <-chan NoteEvent { return nil }
func (c *fakeController) Changes() <-chan []string     { return nil }
func (c *fakeController) Close() error {
	c.closes++
	return nil
}

func nextEvent(t *testing.T, dm *DeviceManager) DeviceEvent {
	t.Helper()
	select {
	case ev := <-dm.Events():
		return ev
	default:
		t.Fatal("no device event")
		return DeviceEvent{}
	}
}

func TestDeviceManagerScan(t *testing.T) {
	dm := NewDeviceManager(nil, 0)
	var ports []drivers.In
	dm.listPorts = func() []drivers.In { return ports }

	opened := make(map[string]*fakeController)
	dm.open = func(id string, in drivers.In, settle time.Duration) (Controller, error) {
		if id == "Broken Synth" {
			return nil, errors.New("device busy")
		}
		c := &fakeController{id: id}
		opened[id] = c
		return c, nil
	}

	ports = []drivers.In{
		fakePort{name: "Arturia KeyStep 32"},
		fakePort{name: "Midi Through Port-0"},
		fakePort{name: "Broken Synth"},
	}
	dm.scan()

	ev := nextEvent(t, dm)
	assert.Equal(t, DeviceConnected, ev.Type)
	assert.Equal(t, "Arturia KeyStep 32", ev.ID)
	require.Contains(t, opened, "Arturia KeyStep 32")
	assert.Same(t, opened["Arturia KeyStep 32"], ev.Controller)
	assert.Len(t, opened, 1)
	assert.Empty(t, dm.Events(), "through port and failed open emit nothing")

	ctrls := dm.Controllers()
	assert.Len(t, ctrls, 1)
	assert.Contains(t, ctrls, "Arturia KeyStep 32")

	// a port that is still present is not reopened
	dm.scan()
	assert.Empty(t, dm.Events())
	assert.Len(t, opened, 1)

	ports = nil
	dm.scan()
	ev = nextEvent(t, dm)
	assert.Equal(t, DeviceDisconnected, ev.Type)
	assert.Equal(t, "Arturia KeyStep 32", ev.ID)
	assert.Equal(t, 1, opened["Arturia KeyStep 32"].closes)
	assert.Empty(t, dm.Controllers())
	assert.Len(t, ctrls, 1, "snapshot is a copy")
}
