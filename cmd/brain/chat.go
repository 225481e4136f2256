package main

import (
	"bufio"
	"strings"

	"github.com/spf13/cobra"
)

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}

func newChatCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions interactively; type exit or quit to leave",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			verbose, _ := cmd.Flags().GetBool("verbose")

			a, err := d.newAssistant(ctx, d)
			if err != nil {
				return err
			}

			scanner := bufio.NewScanner(d.stdin)
			for {
				d.printer.Prompt()
				if !scanner.Scan() {
					d.printer.EndStream()
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if isExit(line) {
					return nil
				}

				answer, err := a.Stream(ctx, line, d.printer.Chunk)
				d.printer.EndStream()
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					d.printer.Error(err)
					continue
				}
				if verbose {
					d.printer.Context(answer.Snippet())
				}
			}
		},
	}
	cmd.Flags().BoolP("verbose", "v", false, "Show the retrieved context after each answer")
	return cmd
}
