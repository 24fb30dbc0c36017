package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the heartaxis banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{`  _                     _                  _     `, "#fca5a5"},
		{` | |__   ___  __ _ _ __| |_ __ ___  _(_)___ `, "#f87171"},
		{` | '_ \ / _ \/ _' | '__| __/ _' \ \/ / / __|`, "#ef4444"},
		{` | | | |  __/ (_| | |  | || (_| |>  <| \__ \`, "#dc2626"},
		{` |_| |_|\___|\__,_|_|   \__\__,_/_/\_\_|___/`, "#b91c1c"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  electrical axis of the heart  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
