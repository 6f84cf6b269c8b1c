// Relay is a CI/CD orchestrator: it maps a change event to the pipelines
// that must run, executes them, and alerts the team channel on protected
// branch failures.
//
// Configuration comes from RELAY_-prefixed environment variables; secrets
// (registry credentials, webhook URL, platform token) are injected by the
// invoking platform under the names the configuration references.
//
// Usage:
//
//	relay run --event push --branch main
//	relay run --event pull_request --branch feature/x
//	relay run --event release --action published
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "relay",
		Short:         "CI/CD orchestration core",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}
