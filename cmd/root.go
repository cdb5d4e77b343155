package cmd

import (
	"github.com/spf13/cobra"

	"crazzzytube/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "crazzzytube",
		Short:        "video sharing backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(server(config), migrate(config))
	return rootCmd
}
