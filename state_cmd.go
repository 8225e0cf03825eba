package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamescl604/MSFSVoiceAttackPlugin/agent"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/config"
	"github.com/jamescl604/MSFSVoiceAttackPlugin/datadef"
)

func newStateCmd(flags *config.Flags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Print the current PlaneState",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(flags, agent.Hooks{})
			if err != nil {
				return err
			}
			if err := a.agent.Connect(cmd.Context()); err != nil {
				return err
			}
			defer a.agent.Disconnect()

			if err := a.agent.AddDataDefinitions(); err != nil {
				return err
			}
			if err := a.agent.RequestData(datadef.RequestPlaneState, datadef.DefinitionPlaneState); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
			defer cancel()
			if err := a.agent.WaitForData(ctx, datadef.RequestPlaneState); err != nil {
				return fmt.Errorf("waiting for PlaneState: %w", err)
			}

			ps, err := a.agent.PlaneState()
			if err != nil {
				return err
			}
			return printFields(cmd, ps.Fields(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as a JSON object")
	return cmd
}

func printFields(cmd *cobra.Command, fields []datadef.KeyValue, asJSON bool) error {
	out := cmd.OutOrStdout()
	if !asJSON {
		for _, kv := range fields {
			fmt.Fprintf(out, "%-32s %s\n", kv.Key, kv.Value)
		}
		return nil
	}

	obj := make(map[string]any, len(fields))
	for _, kv := range fields {
		obj[kv.Key] = kv.Value.Interface()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(obj)
}
