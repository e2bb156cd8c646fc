// Command graphdb_admin is the cluster control-plane CLI: it launches
// per-shard server processes and manages them interactively ("start"), and
// broadcasts a reset to every shard ("reset").
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "graphdb_admin"}
	root.AddCommand(startCmd())
	root.AddCommand(resetCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
