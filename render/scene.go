package render

// Op is one recorded drawing call; exactly one of Rect/Text is set
type Op struct {
	Rect *RectSpec
	Text *TextSpec
}

// Scene is a Surface that records what was drawn
type Scene struct {
	Ops    []Op
	Clears int
}

func (s *Scene) Clear() {
	s.Ops = s.Ops[:0]
	s.Clears++
}

func (s *Scene) Rect(r RectSpec) {
	s.Ops = append(s.Ops, Op{Rect: &r})
}

func (s *Scene) Text(t TextSpec) {
	s.Ops = append(s.Ops, Op{Text: &t})
}

// Rects returns the rectangles drawn in layer, in draw order
func (s *Scene) Rects(layer Layer) []RectSpec {
	var out []RectSpec
	for _, op := range s.Ops {
		if op.Rect != nil && op.Rect.Layer == layer {
			out = append(out, *op.Rect)
		}
	}
	return out
}

// Labels returns the text elements in draw order
func (s *Scene) Labels() []TextSpec {
	var out []TextSpec
	for _, op := range s.Ops {
		if op.Text != nil {
			out = append(out, *op.Text)
		}
	}
	return out
}
