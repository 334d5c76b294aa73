package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/redgit/redgit/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize redgit in the current repository",
	Long: `Initialize redgit by writing .redgit/config.yaml with defaults.

Example:
  cd ~/myproject
  redgit init
  redgit init --force   # Overwrite an existing configuration`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		_, repoRoot, err := openRepo(ctx)
		if err != nil {
			fail("%v", err)
		}

		path := filepath.Join(repoRoot, config.Dir, config.FileName)
		if _, err := os.Stat(path); err == nil && !initForce {
			fail("configuration already exists at %s (use --force to overwrite)", path)
		}

		cfg := config.Default()
		if err := cfg.Save(repoRoot); err != nil {
			fail("%v", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Initialized redgit\n\n", green("✓"))
		fmt.Printf("  Config: %s\n", cyan(path))
		fmt.Println()
		fmt.Printf("%s Next steps:\n", gray("→"))
		fmt.Printf("  %s\n", gray("redgit version init           # Set the initial version"))
		fmt.Printf("  %s\n", gray("redgit changelog generate -v 0.1.0"))
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing configuration")
}
