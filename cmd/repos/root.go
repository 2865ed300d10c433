package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var logLevelFlag string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos",
		Short: "Manage a fleet of version-controlled repositories",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if v, ok := levelStrings[strings.ToLower(logLevelFlag)]; ok {
				loggerLevel.Set(v)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newFindCmd())
	cmd.AddCommand(newWorktreeCmd())

	return cmd
}
