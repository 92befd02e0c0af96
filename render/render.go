// Package render draws a computed keyboard onto a Surface.
//
// Every call clears the surface and redraws the whole scene: white keys,
// then black keys on top, then white key labels. There is no diffing.
package render

import (
	"theory-keys/keyboard"
)

// Label placement, in canvas units
const (
	LabelBaseline = keyboard.Height - 20
	LabelSize     = 12.0

	WhiteRadius = 4.0
	BlackRadius = 2.0
)

// Layer identifies the pass an element was drawn in
type Layer int

const (
	LayerWhite Layer = iota
	LayerBlack
	LayerLabel
)

type RectSpec struct {
	Layer  Layer
	Key    keyboard.Key
	X, Y   float64
	W, H   float64
	Radius float64
	Fill   string
	Stroke string
}

type TextSpec struct {
	Key  keyboard.Key
	X, Y float64 // X is the horizontal center
	Text string
	Size float64
	Fill string
}

// Surface is anything a keyboard scene can be drawn into
type Surface interface {
	Clear()
	Rect(r RectSpec)
	Text(t TextSpec)
}

// Style picks colors for key states
type Style interface {
	KeyFill(black, active bool) string
	KeyStroke(black bool) string
	LabelFill(active bool) string
}

type Renderer struct {
	Style Style
}

func New(style Style) *Renderer {
	if style == nil {
		style = DefaultStyle
	}
	return &Renderer{Style: style}
}

// Render replaces whatever s holds with keys. A nil surface (not mounted
// yet) is a no-op; the caller renders again once it exists.
func (r *Renderer) Render(s Surface, keys []keyboard.Key) {
	if isNil(s) {
		return
	}
	style := r.Style
	if style == nil {
		style = DefaultStyle
	}

	s.Clear()

	for _, k := range keys {
		if k.Black {
			continue
		}
		s.Rect(RectSpec{
			Layer:  LayerWhite,
			Key:    k,
			X:      k.X,
			W:      keyboard.WhiteWidth,
			H:      keyboard.Height,
			Radius: WhiteRadius,
			Fill:   style.KeyFill(false, k.Active),
			Stroke: style.KeyStroke(false),
		})
	}

	for _, k := range keys {
		if !k.Black {
			continue
		}
		s.Rect(RectSpec{
			Layer:  LayerBlack,
			Key:    k,
			X:      k.X,
			W:      keyboard.BlackWidth,
			H:      keyboard.BlackHeight,
			Radius: BlackRadius,
			Fill:   style.KeyFill(true, k.Active),
			Stroke: style.KeyStroke(true),
		})
	}

	for _, k := range keys {
		if k.Black {
			continue
		}
		s.Text(TextSpec{
			Key:  k,
			X:    k.X + keyboard.WhiteWidth/2,
			Y:    LabelBaseline,
			Text: string(k.Note),
			Size: LabelSize,
			Fill: style.LabelFill(k.Active),
		})
	}
}

// Render draws keys with the default style
func Render(s Surface, keys []keyboard.Key) {
	New(nil).Render(s, keys)
}

// isNil catches typed nil pointers wrapped in the interface
func isNil(s Surface) bool {
	if s == nil {
		return true
	}
	switch v := s.(type) {
	case *Scene:
		return v == nil
	case *SVG:
		return v == nil
	}
	if m, ok := s.(interface{ Mounted() bool }); ok {
		return !m.Mounted()
	}
	return false
}

type palette struct {
	whiteKey, whiteActive, blackKey, blackActive string
	whiteStroke, blackStroke, label, labelActive string
}

func (p palette) KeyFill(black, active bool) string {
	switch {
	case black && active:
		return p.blackActive
	case black:
		return p.blackKey
	case active:
		return p.whiteActive
	}
	return p.whiteKey
}

func (p palette) KeyStroke(black bool) string {
	if black {
		return p.blackStroke
	}
	return p.whiteStroke
}

func (p palette) LabelFill(active bool) string {
	if active {
		return p.labelActive
	}
	return p.label
}

// DefaultStyle is indigo highlights on a slate keyboard
var DefaultStyle Style = palette{
	whiteKey:    "#ffffff",
	whiteActive: "#6366f1",
	blackKey:    "#1e293b",
	blackActive: "#818cf8",
	whiteStroke: "#334155",
	blackStroke: "#0f172a",
	label:       "#64748b",
	labelActive: "#ffffff",
}
