package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Active   rune // ● lit pitch class in the legend
	Inactive rune // ○
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Active:   '●',
			Inactive: '○',
		},
	}
}

// Color roles mapped to palette indices (see palettes/slate.gpl).
// Short palettes clamp to their last color.
const (
	RoleWhiteKey = iota
	RoleWhiteActive
	RoleBlackKey
	RoleBlackActive
	RoleWhiteStroke
	RoleBlackStroke
	RoleLabel
	RoleLabelActive
	RoleAccent
	RoleFG
	RoleMuted
	RoleError
)

// Keyboard colors, as hex strings for any drawing surface

func (t *Theme) KeyFill(black, active bool) string {
	switch {
	case black && active:
		return t.hex(RoleBlackActive)
	case black:
		return t.hex(RoleBlackKey)
	case active:
		return t.hex(RoleWhiteActive)
	}
	return t.hex(RoleWhiteKey)
}

func (t *Theme) KeyStroke(black bool) string {
	if black {
		return t.hex(RoleBlackStroke)
	}
	return t.hex(RoleWhiteStroke)
}

func (t *Theme) LabelFill(active bool) string {
	if active {
		return t.hex(RoleLabelActive)
	}
	return t.hex(RoleLabel)
}

// Style helpers

func (t *Theme) FG() lipgloss.Color {
	return t.color(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.color(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.color(RoleMuted)
}

func (t *Theme) Error() lipgloss.Color {
	return t.color(RoleError)
}

// Active is the highlight used for chrome (badges, legends)
func (t *Theme) Active() lipgloss.Color {
	return t.color(RoleWhiteActive)
}

func (t *Theme) color(role int) lipgloss.Color {
	return lipgloss.Color(t.hex(role))
}

func (t *Theme) hex(role int) string {
	return t.Palette.Index(role).Hex()
}
