package cmd

import (
	"github.com/spf13/cobra"

	"crazzzytube/config"
	server2 "crazzzytube/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start http server and media event consumer",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
