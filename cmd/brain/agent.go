package main

import (
	"errors"
	"strings"

	"github.com/Cyclone1070/secondbrain/internal/workflow"
	"github.com/Cyclone1070/secondbrain/internal/workflow/loop"
	"github.com/spf13/cobra"
)

// noAnswer is printed when the agent runs out of rounds.
const noAnswer = "no answer produced"

func newAgentCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent PROMPT",
		Short: "Let the model list, read, write and run files inside a working directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workdir, _ := cmd.Flags().GetString("workdir")
			verbose, _ := cmd.Flags().GetBool("verbose")

			events := make(chan workflow.Event, 16)
			a, err := d.newAgent(cmd.Context(), d, agentOptions{workdir: workdir, verbose: verbose, events: events})
			if err != nil {
				return err
			}

			printed := make(chan struct{})
			go func() {
				defer close(printed)
				d.printer.PrintEvents(events, verbose)
			}()

			text, err := a.Run(cmd.Context(), strings.Join(args, " "))
			close(events)
			<-printed

			if errors.Is(err, loop.ErrNoConclusion) {
				d.logger.WithError(err).Warn("agent stopped without an answer")
				d.printer.Message(noAnswer)
				return nil
			}
			if err != nil {
				return err
			}
			d.printer.Answer(text)
			return nil
		},
	}
	cmd.Flags().String("workdir", ".", "Directory the agent is confined to")
	cmd.Flags().BoolP("verbose", "v", false, "Print every round and tool call with its arguments")
	return cmd
}
