package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/internal/presentation/tui"
	"github.com/aretw0/heartaxis/pkg/domain"
	"github.com/spf13/cobra"
)

var errInvalidInputs = errors.New("inputs are invalid")

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute the axis once from flags",
	Long: `Validates the readings of the selected mode and prints the axis.

Sums mode (default):   heartaxis calc --sumI 3 --sumIII 3
Waves mode:            heartaxis calc --waves --r1 4 --qs1 1 --r3 3 --qs3 0

Unset flags take their configured default. Pass an empty string to leave a field blank.
The command exits with status 1 when the readings are invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		waves, _ := cmd.Flags().GetBool("waves")
		jsonMode, _ := cmd.Flags().GetBool("json")
		report, _ := cmd.Flags().GetBool("report")

		in := cfg.Settings.Defaults()
		for _, f := range domain.Fields {
			if cmd.Flags().Changed(string(f)) {
				raw, _ := cmd.Flags().GetString(string(f))
				in = in.With(f, domain.ParseValue(raw))
			}
		}

		svc := heartaxis.New(
			heartaxis.WithSettings(cfg.Settings),
			heartaxis.WithDisplay(cfg.Display),
			heartaxis.WithLogger(logger),
		)
		useSums := !waves
		out := svc.Calculate(useSums, in)

		switch {
		case jsonMode:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
		case report:
			md := tui.Report(out.Mode, in, out)
			rendered, err := tui.NewRenderer(tui.IsTerminal(os.Stdout))(md)
			if err != nil {
				rendered = md
			}
			fmt.Print(rendered)
		default:
			tui.PrintOutcome(os.Stdout, out)
		}

		if out.FormInvalid {
			return errInvalidInputs
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().Bool("waves", false, "Use R and QS wave amplitudes instead of lead sums")
	calcCmd.Flags().Bool("json", false, "Print the outcome as JSON")
	calcCmd.Flags().Bool("report", false, "Print a full markdown report")
	for _, f := range domain.Fields {
		calcCmd.Flags().String(string(f), "", tui.Label(f))
	}
}
