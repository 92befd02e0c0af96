package theme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	assert.Equal(t, "Slate", p.Name)
	assert.Len(t, p.Colors, 12)
	assert.Equal(t, "#6366f1", p.Index(RoleWhiteActive).Hex())
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nName: Two\nColumns: 2\n# comment\n10 20 30 a\n300 0 -5 b\nnot a color\n"
	p, err := ParseGPL(strings.NewReader(src), "two.gpl")
	require.NoError(t, err)
	assert.Equal(t, "Two", p.Name)
	assert.Equal(t, []RGB{{10, 20, 30}, {255, 0, 0}}, p.Colors)

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n"), "empty.gpl")
	assert.ErrorContains(t, err, "empty.gpl")
}

func TestIndexClamps(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	assert.Equal(t, RGB{200, 100, 50}, p.Index(99))
	assert.Equal(t, RGB{0, 0, 0}, p.Index(-1))
}

func TestKeyColors(t *testing.T) {
	th := New(nil)

	fills := map[string]bool{}
	for _, black := range []bool{false, true} {
		for _, active := range []bool{false, true} {
			fills[th.KeyFill(black, active)] = true
		}
	}
	assert.Len(t, fills, 4, "every key state must be distinguishable")

	assert.NotEqual(t, th.LabelFill(true), th.LabelFill(false))
	assert.NotEqual(t, th.LabelFill(true), th.KeyFill(false, true))
	assert.Equal(t, "#ffffff", th.KeyFill(false, false))
}
