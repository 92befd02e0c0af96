package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"theory-keys/analysis"
	"theory-keys/config"
	"theory-keys/debug"
	"theory-keys/theme"
)

var (
	configPath string
	debugLog   bool
)

var rootCmd = &cobra.Command{
	Use:   "theory-keys",
	Short: "Visualize scales, chords and intervals on a piano keyboard",
	Long: `theory-keys asks a language model what notes make up a scale, chord,
interval or melody and highlights them on a two-octave keyboard.

Run without a subcommand to start the terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugLog {
			return debug.Enable()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/theory-keys/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log to ~/.config/theory-keys/debug.log")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

func newAnalyzer(cfg *config.Config) *analysis.Client {
	return analysis.NewClientWithConfig(&analysis.ClientConfig{
		BaseURL:           cfg.Analysis.URL,
		Model:             cfg.Analysis.Model,
		Timeout:           cfg.Analysis.Timeout.Duration,
		RequestsPerMinute: cfg.Analysis.RequestsPerMinute,
	})
}

func loadTheme(cfg *config.Config) (*theme.Theme, error) {
	if cfg.UI.Palette == "" {
		return theme.New(theme.DefaultPalette()), nil
	}
	p, err := theme.LoadGPL(cfg.UI.Palette)
	if err != nil {
		return nil, fmt.Errorf("load palette: %w", err)
	}
	return theme.New(p), nil
}
