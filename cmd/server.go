package cmd

import (
	"slumberpod/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动SlumberPod服务器",
	Long:  `启动SlumberPod助眠音频系统的HTTP服务器，提供音频目录、组合播放和社区API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
