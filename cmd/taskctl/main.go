// AngelaMos | 2026
// main.go

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Operator tooling for the taskboard API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(keygenCmd())
	root.AddCommand(migrateCmd(&configPath))
	root.AddCommand(pruneActivityCmd(&configPath))
	root.AddCommand(promoteCmd(&configPath))

	return root
}
