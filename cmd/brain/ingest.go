package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCommand(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk, embed and index every note in the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			watch, _ := cmd.Flags().GetBool("watch")
			vault, _ := cmd.Flags().GetString("vault")
			if vault == "" {
				vault = d.secrets.VaultPath
			}

			runner, watcher, err := d.newIngest(ctx, d, vault)
			if err != nil {
				return err
			}

			stats, err := runner.Run(ctx)
			if err != nil {
				return err
			}
			d.printer.Message(fmt.Sprintf("Ingested %d notes (%d chunks in %d batches)", stats.Notes, stats.Chunks, stats.Batches))

			if !watch {
				return nil
			}
			d.printer.Message("Watching for changes, press Ctrl+C to stop")
			return watcher.Run(ctx)
		},
	}
	cmd.Flags().Bool("watch", false, "Keep running and re-ingest notes as they change")
	cmd.Flags().String("vault", "", "Vault directory (default $VAULT_PATH)")
	return cmd
}
