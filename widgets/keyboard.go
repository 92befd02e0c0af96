package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"theory-keys/keyboard"
	"theory-keys/render"
)

// eps absorbs float error when canvas edges land exactly on cell edges
const eps = 1e-9

type cell struct {
	ch rune
	fg string
	bg string
}

// Keyboard is a render.Surface that rasterizes the 800x200 scene into a
// character grid. Later draws cover earlier ones, so black keys land on top
// of white keys the same way they do in the SVG.
type Keyboard struct {
	cols, rows int
	cells      []cell
}

// NewKeyboard creates a grid. A zero size is valid and means "not mounted":
// rendering into it does nothing until Resize gives it room.
func NewKeyboard(cols, rows int) *Keyboard {
	k := &Keyboard{}
	k.Resize(cols, rows)
	return k
}

func (k *Keyboard) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	k.cols, k.rows = cols, rows
	k.cells = make([]cell, cols*rows)
}

func (k *Keyboard) Size() (cols, rows int) {
	return k.cols, k.rows
}

// Mounted reports whether the grid has any cells to draw into
func (k *Keyboard) Mounted() bool {
	return k != nil && k.cols > 0 && k.rows > 0
}

func (k *Keyboard) Clear() {
	for i := range k.cells {
		k.cells[i] = cell{}
	}
}

func (k *Keyboard) Rect(r render.RectSpec) {
	c0 := k.col(r.X)
	c1 := int(math.Ceil((r.X+r.W)/keyboard.Width*float64(k.cols) - eps))
	r1 := int(math.Ceil((r.Y+r.H)/keyboard.Height*float64(k.rows) - eps))
	if r.Layer == render.LayerBlack {
		// keep black keys at least one column wide at small sizes
		if c1 <= c0 {
			c1 = c0 + 1
		}
		// and a row short of the bottom so labels stay clear of them
		if r1 >= k.rows {
			r1 = k.rows - 1
		}
	}
	r0 := k.row(r.Y)

	for row := r0; row < r1 && row < k.rows; row++ {
		for col := c0; col < c1 && col < k.cols; col++ {
			c := cell{ch: ' ', bg: r.Fill}
			// left edge of a white key is its separator
			if r.Layer == render.LayerWhite && col == c0 {
				c.ch = '▏'
				c.fg = r.Stroke
			}
			k.set(col, row, c)
		}
	}
}

func (k *Keyboard) Text(t render.TextSpec) {
	runes := []rune(t.Text)
	row := k.row(t.Y)
	if row >= k.rows {
		row = k.rows - 1
	}
	start := int(math.Round(t.X/keyboard.Width*float64(k.cols))) - len(runes)/2
	for i, ch := range runes {
		col := start + i
		if col < 0 || col >= k.cols {
			continue
		}
		c := k.cells[row*k.cols+col]
		c.ch = ch
		c.fg = t.Fill
		k.cells[row*k.cols+col] = c
	}
}

func (k *Keyboard) col(x float64) int {
	c := int(math.Floor(x/keyboard.Width*float64(k.cols) + eps))
	if c < 0 {
		return 0
	}
	return c
}

func (k *Keyboard) row(y float64) int {
	r := int(math.Floor(y/keyboard.Height*float64(k.rows) + eps))
	if r < 0 {
		return 0
	}
	return r
}

func (k *Keyboard) set(col, row int, c cell) {
	k.cells[row*k.cols+col] = c
}

// Cell returns the character and colors at col,row (for tests and hit testing)
func (k *Keyboard) Cell(col, row int) (ch rune, fg, bg string) {
	if col < 0 || row < 0 || col >= k.cols || row >= k.rows {
		return 0, "", ""
	}
	c := k.cells[row*k.cols+col]
	return c.ch, c.fg, c.bg
}

// HitTest returns the note name of the key under col,row on keys, or ""
func (k *Keyboard) HitTest(keys []keyboard.Key, col, row int) string {
	if !k.Mounted() || col < 0 || row < 0 || col >= k.cols || row >= k.rows {
		return ""
	}
	x := (float64(col) + 0.5) / float64(k.cols) * keyboard.Width
	y := (float64(row) + 0.5) / float64(k.rows) * keyboard.Height
	// black keys sit on top
	for _, key := range keys {
		if key.Black && x >= key.X && x < key.X+key.Width() && y < key.Height() {
			return key.Name()
		}
	}
	for _, key := range keys {
		if !key.Black && x >= key.X && x < key.X+key.Width() {
			return key.Name()
		}
	}
	return ""
}

// View renders the grid with lipgloss colors
func (k *Keyboard) View() string {
	if !k.Mounted() {
		return ""
	}
	lines := make([]string, k.rows)
	for row := 0; row < k.rows; row++ {
		var line strings.Builder
		for col := 0; col < k.cols; col++ {
			c := k.cells[row*k.cols+col]
			ch := c.ch
			if ch == 0 {
				ch = ' '
			}
			style := lipgloss.NewStyle()
			if c.bg != "" {
				style = style.Background(lipgloss.Color(c.bg))
			}
			if c.fg != "" {
				style = style.Foreground(lipgloss.Color(c.fg))
			}
			line.WriteString(style.Render(string(ch)))
		}
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}
