package keyboard

import (
	"fmt"
	"strings"
)

// Note is a pitch class name, octave-independent
type Note string

// Notes is the chromatic table, C first. There is no E# or B#, so the
// layout never emits a black key between E/F or B/C.
var Notes = []Note{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Geometry of the logical canvas (2 octaves, C3 to B4)
const (
	Width  = 800.0
	Height = 200.0

	LowOctave  = 3
	HighOctave = 4
	KeyCount   = 24
	WhiteKeys  = 14

	WhiteWidth  = Width / WhiteKeys
	BlackWidth  = WhiteWidth * 0.6
	BlackHeight = Height * 0.6
	BlackOffset = 0.7 // black key left edge, in white widths past the previous white key
)

// Key is one key of the keyboard. Keys are values; Compute builds a fresh
// slice every time.
type Key struct {
	Note   Note
	Octave int
	Black  bool
	X      float64
	Active bool
}

// IsBlack reports whether the note is a sharp
func (n Note) IsBlack() bool {
	return strings.Contains(string(n), "#")
}

// Index returns the chromatic position (0-11) or -1 if n is not canonical
func (n Note) Index() int {
	for i, name := range Notes {
		if name == n {
			return i
		}
	}
	return -1
}

// Name returns the note with its octave, e.g. "C#3"
func (k Key) Name() string {
	return fmt.Sprintf("%s%d", k.Note, k.Octave)
}

func (k Key) Width() float64 {
	if k.Black {
		return BlackWidth
	}
	return WhiteWidth
}

func (k Key) Height() float64 {
	if k.Black {
		return BlackHeight
	}
	return Height
}

// Center returns the horizontal center of the key
func (k Key) Center() float64 {
	return k.X + k.Width()/2
}

// Normalize strips octave digits. Flats and enharmonics are left alone:
// "Db" stays "Db" and matches nothing.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)
}

// Parse normalizes s and returns the canonical note it names
func Parse(s string) (Note, bool) {
	n := Note(Normalize(s))
	if n.Index() < 0 {
		return "", false
	}
	return n, true
}

// Compute lays out the keyboard and marks every key whose pitch class
// appears in active. Matching ignores octaves, so "C" lights C3 and C4.
func Compute(active []string) []Key {
	want := make(map[Note]bool, len(active))
	for _, s := range active {
		if n, ok := Parse(s); ok {
			want[n] = true
		}
	}

	keys := make([]Key, 0, KeyCount)
	for octave := LowOctave; octave <= HighOctave; octave++ {
		for _, note := range Notes {
			keys = append(keys, Key{
				Note:   note,
				Octave: octave,
				Black:  note.IsBlack(),
				Active: want[note],
			})
		}
	}

	cursor := 0.0
	for i := range keys {
		if keys[i].Black {
			keys[i].X = cursor - WhiteWidth + WhiteWidth*BlackOffset
			continue
		}
		keys[i].X = cursor
		cursor += WhiteWidth
	}

	return keys
}

// White returns the white keys in order
func White(keys []Key) []Key {
	var out []Key
	for _, k := range keys {
		if !k.Black {
			out = append(out, k)
		}
	}
	return out
}

// Black returns the black keys in order
func Black(keys []Key) []Key {
	var out []Key
	for _, k := range keys {
		if k.Black {
			out = append(out, k)
		}
	}
	return out
}

// ActiveKeys returns the highlighted keys in order
func ActiveKeys(keys []Key) []Key {
	var out []Key
	for _, k := range keys {
		if k.Active {
			out = append(out, k)
		}
	}
	return out
}

// Find returns the key for note/octave, if it is on the keyboard
func Find(keys []Key, note Note, octave int) (Key, bool) {
	for _, k := range keys {
		if k.Note == note && k.Octave == octave {
			return k, true
		}
	}
	return Key{}, false
}
