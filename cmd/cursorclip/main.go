// cursorclip: clipboard history daemon for wlroots-based Wayland compositors.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "cursorclip",
		Short: "Clipboard history for Wayland",
		Long: `cursorclip keeps a history of everything copied on a Wayland compositor
that supports the wlr-data-control protocol (sway, Hyprland, river, ...).

Run "cursorclip daemon" once per session. It reads every new selection,
stores it, and takes ownership of it so the content survives the application
that copied it exiting. UIs and the history/set/clear/watch sub-commands talk
to the daemon over a Unix socket.

Config file search order (first found wins):
  /etc/cursorclip/cursorclip.toml
  $HOME/.config/cursorclip/cursorclip.toml
  path supplied via --config

All flags can be set via CURSORCLIP_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newHistoryCmd(),
		newSetCmd(),
		newClearCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("cursorclip %s\n", Version)
		},
	}
}
