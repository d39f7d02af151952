package cmd

import (
	"cutroom/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the cutroom HTTP server",
	Long:  `Start the cutroom editing server: project API, timeline engine, websocket drag channel and media import.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
