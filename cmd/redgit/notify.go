package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/integrations"
)

var (
	notifyKind string
	notifyBody string
	notifyLink string
)

var notifyCmd = &cobra.Command{
	Use:   "notify <title>",
	Short: "Send a notification to the configured channels",
	Long: `Send an ad-hoc notification through every configured notifier that
accepts the event kind. Delivery is best-effort: failures are reported
but never change the exit status.

Example:
  redgit notify "Deploy finished" --body "api v1.2.0 is live"
  redgit notify "Rollback started" --kind error`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		_, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}
		cfg, err := loadConfig(repoRoot)
		if err != nil {
			fail("%v", err)
		}

		registry := buildRegistry(cfg)
		if len(registry.Notifiers()) == 0 {
			fail("no notifiers configured (add a notifiers entry to %s/config.yaml)", repoRoot+"/.redgit")
		}

		results := registry.Dispatch(ctx, integrations.Event{
			Kind:  integrations.EventKind(notifyKind),
			Title: args[0],
			Body:  notifyBody,
			Link:  notifyLink,
		})

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("%s %s: %v\n", yellow("⚠"), r.Notifier, r.Err)
			} else {
				fmt.Printf("%s sent via %s\n", green("✓"), r.Notifier)
			}
		}
		if len(results) == 0 {
			fmt.Printf("%s no notifier accepts %q events\n", yellow("⚠"), notifyKind)
		}
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringVar(&notifyKind, "kind", string(integrations.EventRelease), "Event kind: release, changelog, or error")
	notifyCmd.Flags().StringVar(&notifyBody, "body", "", "Message body")
	notifyCmd.Flags().StringVar(&notifyLink, "link", "", "Optional URL to attach")
}
