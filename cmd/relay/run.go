package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forgeworks/relay/internal/config"
	"github.com/forgeworks/relay/internal/executor"
	"github.com/forgeworks/relay/internal/logging"
	"github.com/forgeworks/relay/internal/notify"
	"github.com/forgeworks/relay/internal/orchestrator"
	"github.com/forgeworks/relay/internal/pipeline"
	"github.com/forgeworks/relay/internal/publish"
	"github.com/forgeworks/relay/internal/secrets"
	"github.com/forgeworks/relay/internal/trigger"
	"github.com/forgeworks/relay/internal/workspace"
)

func newRunCmd() *cobra.Command {
	var (
		event  string
		branch string
		action string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipelines scheduled by a change event",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ev := trigger.Event{
				Kind:   trigger.Kind(event),
				Branch: branch,
				Action: action,
			}

			resolver := secrets.NewEnvProvider()
			defer resolver.Close()

			// Public repositories clone without a token.
			token := ""
			if secret, err := resolver.Resolve(cmd.Context(), cfg.TokenRef); err == nil {
				token = secret.String()
				secret.Clear()
			}

			exec := executor.NewCommandRunner()
			source := workspace.NewGitSource(cfg.CloneURL, token)
			runner := pipeline.NewCheckoutRunner(source, exec, log)
			graph := pipeline.NewGraph(pipeline.VerificationJobs(), runner, log)

			publisher := publish.New(publish.Config{
				ImageRef:     cfg.ImageRef,
				RegistryURL:  cfg.RegistryURL,
				BuildFile:    cfg.BuildFile,
				ManifestPath: cfg.ManifestPath,
				UsernameRef:  cfg.RegistryUserRef,
				PasswordRef:  cfg.RegistryPassRef,
			}, exec, resolver, log)

			notifier := notify.NewDispatcher(
				cfg.NotifyPretext,
				cfg.ProtectedBranch,
				cfg.WebhookRef,
				cfg.ActionURL(),
				resolver,
				log,
			)

			eval := trigger.NewEvaluator(cfg.ProtectedBranch)
			orch := orchestrator.New(eval, graph, publisher, notifier, log)

			return orch.Run(cmd.Context(), ev)
		},
	}

	cmd.Flags().StringVar(&event, "event", "", "event kind: push, pull_request, or release")
	cmd.Flags().StringVar(&branch, "branch", "", "branch the event targets")
	cmd.Flags().StringVar(&action, "action", "", "event action qualifier (e.g. published)")
	_ = cmd.MarkFlagRequired("event")

	return cmd
}
