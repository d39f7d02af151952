package cmd

import (
	"fmt"
	"log"
	"os"

	"cutroom/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cutroom",
	Short: "Cutroom is a timeline-based video editing server.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting cutroom server...")
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
