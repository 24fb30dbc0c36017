package main

import (
	"context"
	"os"

	"github.com/aretw0/heartaxis"
	"github.com/aretw0/heartaxis/internal/cli"
	"github.com/aretw0/heartaxis/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [session-id]",
	Short: "Run an interactive calculator session",
	Long: `Starts an interactive session. Values are saved when the session ends and
restored the next time the same session ID is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		if len(args) > 0 {
			sessionID = args[0]
		}
		waves, _ := cmd.Flags().GetBool("waves")

		rt, err := cli.Build(cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		rich := tui.IsTerminal(os.Stdout)
		if rich {
			tui.PrintBanner(os.Stdout, heartaxis.Version)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.RunSession(sigCtx, rt.Service, cli.RunOptions{
			SessionID: sessionID,
			UseSums:   !waves,
			In:        os.Stdin,
			Out:       os.Stdout,
			Render:    tui.NewRenderer(rich),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "default", "Session ID to start or restore")
	runCmd.Flags().Bool("waves", false, "Start new sessions in waves mode")
}
