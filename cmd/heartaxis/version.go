package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aretw0/heartaxis"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the heartaxis release and build platform",
	RunE: func(cmd *cobra.Command, args []string) error {
		short, _ := cmd.Flags().GetBool("short")
		fmt.Fprint(cmd.OutOrStdout(), versionString(short))
		return nil
	},
}

func versionString(short bool) string {
	v := strings.TrimSpace(heartaxis.Version)
	if short {
		return v + "\n"
	}
	return fmt.Sprintf("heartaxis %s (%s, %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the release number")
	rootCmd.AddCommand(versionCmd)
}
