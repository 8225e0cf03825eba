package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/agent"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/config"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/events"
)

func newTriggerCmd(flags *config.Flags) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "trigger EVENT [DATA]",
		Short: "Send one event to the sim",
		Long: `Connects, sends one client event and disconnects.

DATA is encoded according to the event: radio setters take a frequency such
as 118.25, XPNDR_SET takes a squawk code such as 7000 and every other event
takes a signed 32-bit integer. Blank DATA means 0.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := events.Parse(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", agent.ErrUnknownEvent, args[0])
			}
			data := ""
			if len(args) == 2 {
				data = args[1]
			}

			a, err := setup(flags, agent.Hooks{})
			if err != nil {
				return err
			}
			if err := a.agent.Connect(cmd.Context()); err != nil {
				return err
			}
			defer a.agent.Disconnect()

			if err := a.agent.TriggerEvent(id, data); err != nil {
				return err
			}
			if text != "" {
				if err := a.agent.SetText(text, 3); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "Text banner to show in the sim after the event")
	return cmd
}
