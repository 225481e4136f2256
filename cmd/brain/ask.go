package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask QUESTION",
		Short: "Answer a question from the notes vault",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			question := strings.Join(args, " ")

			a, err := d.newAssistant(cmd.Context(), d)
			if err != nil {
				return err
			}
			answer, err := a.Ask(cmd.Context(), question)
			if err != nil {
				return err
			}

			if verbose {
				d.printer.Context(answer.Snippet())
			}
			d.printer.Answer(answer.Text)
			return nil
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show the retrieved context")
	return cmd
}
