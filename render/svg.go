package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"

	"theory-keys/keyboard"
)

// SVG is a Surface that builds a standalone SVG document
type SVG struct {
	groups [3]bytes.Buffer // one <g> per layer, so black keys stay above white
}

func NewSVG() *SVG {
	return &SVG{}
}

func (s *SVG) Clear() {
	for i := range s.groups {
		s.groups[i].Reset()
	}
}

func (s *SVG) Rect(r RectSpec) {
	g := &s.groups[r.Layer]
	fmt.Fprintf(g, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s" fill="%s" stroke="%s" data-note="%s"/>`,
		num(r.X), num(r.Y), num(r.W), num(r.H), num(r.Radius), num(r.Radius),
		html.EscapeString(r.Fill), html.EscapeString(r.Stroke), html.EscapeString(r.Key.Name()))
	g.WriteByte('\n')
}

func (s *SVG) Text(t TextSpec) {
	g := &s.groups[LayerLabel]
	fmt.Fprintf(g, `<text x="%s" y="%s" text-anchor="middle" fill="%s" style="font-size: %spx">%s</text>`,
		num(t.X), num(t.Y), html.EscapeString(t.Fill), num(t.Size), html.EscapeString(t.Text))
	g.WriteByte('\n')
}

// WriteTo writes the current scene as an SVG document
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	var out bytes.Buffer
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s">`,
		num(keyboard.Width), num(keyboard.Height))
	out.WriteByte('\n')
	for i := range s.groups {
		out.WriteString("<g>\n")
		out.Write(s.groups[i].Bytes())
		out.WriteString("</g>\n")
	}
	out.WriteString("</svg>\n")
	return out.WriteTo(w)
}

func (s *SVG) String() string {
	var b bytes.Buffer
	s.WriteTo(&b)
	return b.String()
}

// RenderSVG is a shortcut for a one-off document
func RenderSVG(r *Renderer, keys []keyboard.Key) string {
	s := NewSVG()
	r.Render(s, keys)
	return s.String()
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
