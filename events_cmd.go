package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
)

func newEventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "List the events the agent can trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, id := range events.All() {
				fmt.Fprintf(out, "%-30s %s\n", events.Name(id), events.PolicyOf(id))
			}
			return nil
		},
	}
}
