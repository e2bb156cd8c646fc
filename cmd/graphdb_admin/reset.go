package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func resetCmd() *cobra.Command {
	var rosterPath string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "broadcast an ADMIN/RESET to every shard in the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			roster, err := loadRoster(rosterPath)
			if err != nil {
				return err
			}
			c, err := dialRoster(roster)
			if err != nil {
				return err
			}
			if err := c.Reset(context.Background()); err != nil {
				return fmt.Errorf("graphdb_admin: reset: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d shards\n", len(roster.Shards))
			return nil
		},
	}
	cmd.Flags().StringVar(&rosterPath, "roster", "roster.yaml", "path to the shard roster file")
	return cmd
}
