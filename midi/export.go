package midi

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"theory-keys/keyboard"
)

// ExportOptions controls ExportSMF
type ExportOptions struct {
	Name     string  // track name
	BPM      float64 // default 120
	Beats    int     // chord length in quarter notes, default 4, at most MaxBeats
	Velocity uint8   // default 100
	Octave   int     // used for names without an octave; negative means DefaultOctave
	Channel  uint8
}

const (
	ticksPerQuarter = 960

	// MaxBeats keeps the chord length inside an SMF delta (28 bits)
	MaxBeats = 1 << 18

	DefaultOctave = 4
)

func (o ExportOptions) withDefaults() ExportOptions {
	if o.BPM <= 0 {
		o.BPM = 120
	}
	if o.Beats <= 0 {
		o.Beats = 4
	}
	if o.Beats > MaxBeats {
		o.Beats = MaxBeats
	}
	if o.Velocity == 0 {
		o.Velocity = 100
	}
	if o.Octave < 0 {
		o.Octave = DefaultOctave
	}
	if o.Channel > 15 {
		o.Channel = 15
	}
	return o
}

// ChordNumbers resolves note names to MIDI numbers. "E5" keeps its octave,
// "E" uses defaultOctave. Unknown names and duplicates are dropped.
func ChordNumbers(notes []string, defaultOctave int) []uint8 {
	var out []uint8
	seen := make(map[uint8]bool)
	for _, s := range notes {
		n, ok := keyboard.Parse(s)
		if !ok {
			continue
		}
		octave := defaultOctave
		if digits := octaveDigits(s); digits != "" {
			if v, err := strconv.Atoi(digits); err == nil {
				octave = v
			}
		}
		num, ok := NoteNumber(n.Index(), octave)
		if !ok || seen[num] {
			continue
		}
		seen[num] = true
		out = append(out, num)
	}
	return out
}

func octaveDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ExportSMF writes a format 0 file holding one block chord of notes
func ExportSMF(w io.Writer, notes []string, opts ExportOptions) error {
	opts = opts.withDefaults()
	chord := ChordNumbers(notes, opts.Octave)
	length := uint32(ticksPerQuarter * opts.Beats)

	var track smf.Track
	if opts.Name != "" {
		track.Add(0, smf.MetaTrackSequenceName(opts.Name))
	}
	track.Add(0, smf.MetaMeter(4, 4))
	track.Add(0, smf.MetaTempo(opts.BPM))
	for _, n := range chord {
		track.Add(0, gomidi.NoteOn(opts.Channel, n, opts.Velocity))
	}
	for i, n := range chord {
		var delta uint32
		if i == 0 {
			delta = length
		}
		track.Add(delta, gomidi.NoteOff(opts.Channel, n))
	}
	if len(chord) == 0 {
		track.Close(length)
	} else {
		track.Close(0)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	if err := s.Add(track); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}
