package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lanikai/mosaic/internal/logging"
)

// Populated via -ldflags="-X ...".
var GitRevisionId string
var GitTag string

var log = logging.DefaultLogger.WithTag("mosaicd")

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "mosaicd",
		Short:         "Multi-source fixed-rate video compositor",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			help()
		},
	}

	root.AddCommand(
		runCommand(),
		controlCommand("start", "Start recording on a running daemon"),
		controlCommand("stop", "Stop recording on a running daemon"),
		controlCommand("status", "Show the recording status of a running daemon"),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			banner()
			fmt.Println("mosaicd", GitTag, GitRevisionId)
		},
	}
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mosaicd:", err)
		os.Exit(1)
	}
}
