package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"theory-keys/keyboard"
	"theory-keys/render"
)

var analyzeSVG string

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSVG, "svg", "", "also write the highlighted keyboard to this SVG file")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:     "analyze <query>",
	Short:   "Ask the model which notes a scale, chord, interval or melody uses",
	Example: `  theory-keys analyze "d dorian scale"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newAnalyzer(cfg)

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Analysis.Timeout.Duration)
		defer cancel()

		result, err := client.Analyze(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", result.Name, result.Type)
		fmt.Fprintf(out, "notes: %s\n", strings.Join(result.Notes, " "))
		if result.Description != "" {
			fmt.Fprintln(out, result.Description)
		}

		if analyzeSVG == "" {
			return nil
		}
		th, err := loadTheme(cfg)
		if err != nil {
			return err
		}
		return writeSVG(cmd, render.New(th), keyboard.Compute(result.Notes), analyzeSVG)
	},
}
