package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lanikai/mosaic"
	"github.com/lanikai/mosaic/internal/control"
)

const clientTimeout = 10 * time.Second

// controlCommand calls one operation of the control API.
func controlCommand(op, short string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   op,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), clientTimeout)
			defer cancel()

			c := control.NewClient(addr)
			call := map[string]func(context.Context) (mosaic.Status, error){
				"start":  c.Start,
				"stop":   c.Stop,
				"status": c.Status,
			}[op]

			status, err := call(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "localhost:8080", "address of the daemon's control API")
	return cmd
}

var stateColors = map[mosaic.State]*color.Color{
	mosaic.Idle:      color.New(color.FgCyan),
	mosaic.Recording: color.New(color.FgGreen, color.Bold),
	mosaic.Stopped:   color.New(color.FgYellow),
}

func printStatus(w io.Writer, s mosaic.Status) {
	fmt.Fprintf(w, "state:     %s\n", stateColors[s.State].Sprint(s.State))
	if s.Session != "" {
		fmt.Fprintf(w, "session:   %s\n", s.Session)
	}
	if s.OutputFile != "" {
		fmt.Fprintf(w, "file:      %s\n", s.OutputFile)
	}
	if s.StartTime != nil {
		fmt.Fprintf(w, "started:   %s\n", s.StartTime.Format(time.RFC3339))
	}
	if s.EndTime != nil {
		fmt.Fprintf(w, "stopped:   %s (%v)\n", s.EndTime.Format(time.RFC3339), s.EndTime.Sub(*s.StartTime).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "ticks:     %d\n", s.Ticks)
	fmt.Fprintf(w, "overruns:  %d\n", s.Overruns)
	if s.WriteErrors > 0 || s.PublishErrors > 0 {
		fmt.Fprintf(w, "errors:    %d write, %d publish\n", s.WriteErrors, s.PublishErrors)
	}
}
