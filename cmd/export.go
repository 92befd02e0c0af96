package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"theory-keys/midi"
)

var exportOpts struct {
	out      string
	bpm      float64
	beats    int
	octave   int
	velocity uint8
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.out, "output", "o", "chord.mid", "output file")
	f.Float64Var(&exportOpts.bpm, "bpm", 120, "tempo")
	f.IntVar(&exportOpts.beats, "beats", 4, fmt.Sprintf("chord length in quarter notes (at most %d)", midi.MaxBeats))
	f.IntVar(&exportOpts.octave, "octave", midi.DefaultOctave, "octave for notes given without one")
	f.Uint8Var(&exportOpts.velocity, "velocity", 100, "note velocity")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:     "export [notes...]",
	Short:   "Write the notes as a chord to a Standard MIDI File",
	Example: "  theory-keys export C4 E4 G4 B4 -o cmaj7.mid",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(exportOpts.out)
		if err != nil {
			return err
		}
		err = midi.ExportSMF(f, args, midi.ExportOptions{
			Name:     strings.Join(args, " "),
			BPM:      exportOpts.bpm,
			Beats:    exportOpts.beats,
			Velocity: exportOpts.velocity,
			Octave:   exportOpts.octave,
		})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", exportOpts.out)
		return nil
	},
}
