package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"theory-keys/midi"
	"theory-keys/state"
	"theory-keys/tui"
)

var noMIDI bool

func init() {
	tuiCmd.Flags().BoolVar(&noMIDI, "no-midi", false, "do not listen to MIDI keyboards")
	rootCmd.AddCommand(tuiCmd)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func runTUI(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	th, err := loadTheme(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.Enabled && !noMIDI {
		// Connect MIDI devices any time - they're detected automatically
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.Ports, cfg.Debounce())
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(tui.Options{
		Context:   ctx,
		Store:     state.NewStore(),
		Analyzer:  newAnalyzer(cfg),
		DeviceMgr: deviceMgr,
		Theme:     th,
		Columns:   cfg.UI.Columns,
		Rows:      cfg.UI.Rows,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	_, err = p.Run()
	return err
}
