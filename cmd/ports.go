package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"theory-keys/midi"
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ins, outs, ok := midi.PortNames(3 * time.Second)
		if !ok {
			return errors.New("timed out listing MIDI ports")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "=== MIDI Inputs ===")
		for i, name := range ins {
			fmt.Fprintf(out, "  %d: %s\n", i, name)
		}
		fmt.Fprintln(out, "\n=== MIDI Outputs ===")
		for i, name := range outs {
			fmt.Fprintf(out, "  %d: %s\n", i, name)
		}
		return nil
	},
}
