package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"theory-keys/keyboard"
	"theory-keys/render"
)

func TestKeyboardRaster(t *testing.T) {
	kb := NewKeyboard(56, 9)
	keys := keyboard.Compute([]string{"C", "C#"})
	r := render.New(nil)
	r.Render(kb, keys)

	// C3 occupies columns 0-3; label centered at column 2 on the last row
	ch, _, bg := kb.Cell(1, 8)
	assert.Equal(t, ' ', ch)
	assert.Equal(t, r.Style.KeyFill(false, true), bg)

	ch, fg, _ := kb.Cell(2, 8)
	assert.Equal(t, 'C', ch)
	assert.Equal(t, r.Style.LabelFill(true), fg)

	// D3 label, inactive
	ch, fg, bg = kb.Cell(6, 8)
	assert.Equal(t, 'D', ch)
	assert.Equal(t, r.Style.LabelFill(false), fg)
	assert.Equal(t, r.Style.KeyFill(false, false), bg)

	// C#3 covers the top rows over the C/D seam
	_, _, bg = kb.Cell(3, 0)
	assert.Equal(t, r.Style.KeyFill(true, true), bg)
	_, _, bg = kb.Cell(3, 7)
	assert.Equal(t, r.Style.KeyFill(false, true), bg)

	// separator on the left edge of each white key
	ch, _, _ = kb.Cell(8, 8)
	assert.Equal(t, '▏', ch)
}

func TestKeyboardRedrawReplaces(t *testing.T) {
	kb := NewKeyboard(56, 9)
	style := render.DefaultStyle
	render.Render(kb, keyboard.Compute([]string{"C"}))
	render.Render(kb, keyboard.Compute(nil))

	_, _, bg := kb.Cell(1, 8)
	assert.Equal(t, style.KeyFill(false, false), bg)
}

func TestKeyboardUnmounted(t *testing.T) {
	kb := NewKeyboard(0, 0)
	assert.False(t, kb.Mounted())
	assert.NotPanics(t, func() { render.Render(kb, keyboard.Compute([]string{"C"})) })
	assert.Empty(t, kb.View())

	kb.Resize(28, 5)
	render.Render(kb, keyboard.Compute([]string{"C"}))
	view := kb.View()
	assert.Equal(t, 5, len(strings.Split(view, "\n")))
}

func TestHitTest(t *testing.T) {
	kb := NewKeyboard(56, 9)
	keys := keyboard.Compute(nil)

	assert.Equal(t, "C3", kb.HitTest(keys, 0, 8))
	assert.Equal(t, "C#3", kb.HitTest(keys, 3, 0))
	assert.Equal(t, "D3", kb.HitTest(keys, 5, 8))
	assert.Equal(t, "B4", kb.HitTest(keys, 55, 8))
	assert.Equal(t, "", kb.HitTest(keys, 56, 0))
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Query",
		Keys:  []KeyBinding{{Key: "enter", Desc: "analyze"}},
	}})
	assert.Equal(t, "Query\n  enter        analyze", out)
	assert.Equal(t, "enter:analyze  esc:clear", RenderKeyLine([]KeyBinding{{"enter", "analyze"}, {"esc", "clear"}}))
}
