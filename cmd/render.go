package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"theory-keys/keyboard"
	"theory-keys/render"
)

var renderOut string

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "write the SVG to a file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:     "render [notes...]",
	Short:   "Draw the keyboard with the given notes highlighted as SVG",
	Example: "  theory-keys render C E G -o c-major.svg",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		th, err := loadTheme(cfg)
		if err != nil {
			return err
		}
		return writeSVG(cmd, render.New(th), keyboard.Compute(args), renderOut)
	},
}

func writeSVG(cmd *cobra.Command, r *render.Renderer, keys []keyboard.Key, path string) error {
	svg := render.NewSVG()
	r.Render(svg, keys)

	if path == "" {
		_, err := svg.WriteTo(cmd.OutOrStdout())
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := svg.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
