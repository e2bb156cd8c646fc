package main

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

// managedServer is one shard server process launched and tracked by start.
type managedServer struct {
	name string
	cmd  *exec.Cmd
}

func startCmd() *cobra.Command {
	var rosterPath string
	cmd := &cobra.Command{
		Use:   "start <server-binary>",
		Short: "launch one process per shard and manage them interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(args[0], rosterPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&rosterPath, "roster", "roster.yaml", "path to the shard roster file")
	return cmd
}

// runStart launches one server-binary invocation per roster entry, each
// against its own config_path, then runs an interactive loop reading
// commands from in: "l" lists managed shards, "s <name>" stops managing
// one (terminating its process), "q" quits, terminating every remaining
// process first.
func runStart(serverBinary, rosterPath string, in io.Reader, out io.Writer) error {
	roster, err := loadRoster(rosterPath)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	managed := make([]*managedServer, 0, len(roster.Shards))
	for _, entry := range roster.Shards {
		name := strconv.Itoa(entry.ID)
		c := exec.Command(serverBinary, "-config", entry.ConfigPath)
		c.Stdout = out
		c.Stderr = out
		if err := c.Start(); err != nil {
			return fmt.Errorf("graphdb_admin: starting shard %s: %w", name, err)
		}
		managed = append(managed, &managedServer{name: name, cmd: c})
	}

	fmt.Fprintf(out, "started %d shard servers; commands: l, s <name>, q\n", len(managed))
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "l":
			mu.Lock()
			for _, s := range managed {
				fmt.Fprintln(out, s.name)
			}
			mu.Unlock()
		case line == "q":
			mu.Lock()
			for _, s := range managed {
				_ = s.cmd.Process.Kill()
			}
			mu.Unlock()
			return nil
		case strings.HasPrefix(line, "s "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "s "))
			mu.Lock()
			idx := slices.IndexFunc(managed, func(s *managedServer) bool { return s.name == name })
			var found bool
			if idx >= 0 {
				found = true
				_ = managed[idx].cmd.Process.Kill()
				managed = slices.Delete(managed, idx, idx+1)
			}
			mu.Unlock()
			if !found {
				fmt.Fprintf(out, "unknown shard %q\n", name)
			}
		default:
			fmt.Fprintf(out, "unknown command %q\n", line)
		}
	}
	return scanner.Err()
}
