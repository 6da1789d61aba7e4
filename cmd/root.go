package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"loopcut/config"
	"loopcut/logger"
	"loopcut/server"
)

var rootCmd = &cobra.Command{
	Use:   "loopcut",
	Short: "loopcut is a media task worker: cycle-aligned audio splitting and video joining.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		server.Start(cfg)
	},
}

// loadConfig loads configuration and initializes logging; every
// subcommand goes through it.
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogFile,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     14,
		Compress:   true,
	})
	return cfg
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
