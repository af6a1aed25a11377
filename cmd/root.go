package cmd

import (
	"fmt"
	"log"
	"os"

	"slumberpod/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "slumberpod",
	Short: "SlumberPod is a sleep-audio service backend.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting SlumberPod server...")
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
