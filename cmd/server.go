package cmd

import (
	"github.com/spf13/cobra"

	"loopcut/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the task HTTP server",
	Long:  `Start the loopcut HTTP server exposing the split_audio and merge_videos task endpoints.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		server.Start(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
