package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	src := `
[analysis]
model = "llama3.2"
timeout = "5s"

[midi]
ports = ["KeyStep"]
debounce_ms = 50

[ui]
palette = "/tmp/x.gpl"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", cfg.Analysis.Model)
	assert.Equal(t, 5*time.Second, cfg.Analysis.Timeout.Duration)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.Analysis.URL)
	assert.Equal(t, []string{"KeyStep"}, cfg.MIDI.Ports)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 56, cfg.UI.Columns)
	assert.Equal(t, "/tmp/x.gpl", cfg.UI.Palette)
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[midi]\ndebounce_ms = -1\n"), 0644))
	_, err := LoadFrom(bad)
	assert.ErrorContains(t, err, "debounce_ms")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[analysis\n"), 0644))
	_, err = LoadFrom(broken)
	assert.ErrorContains(t, err, "parse")

	dur := filepath.Join(dir, "dur.toml")
	require.NoError(t, os.WriteFile(dur, []byte("[analysis]\ntimeout = \"soon\"\n"), 0644))
	_, err = LoadFrom(dur)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Server.Addr = ":9999"
	cfg.MIDI.Ports = []string{"a", "b"}
	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
