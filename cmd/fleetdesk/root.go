package main

import (
	"fmt"
	"os"

	"github.com/osanhueza/fleetdesk/internal/config"
	"github.com/osanhueza/fleetdesk/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fleetdesk",
	Short: "Fleetdesk operations assistant",
	Long:  `Fleetdesk is a conversational assistant for Transvip fleet operations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			return err
		}

		logger.Setup(cfg.Server.LogLevel)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fleetdesk/config.yaml)")
	rootCmd.PersistentFlags().String("server.log_level", config.DefaultServerLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("models.default", config.DefaultModelDefault, "model used for turn decisions")
	rootCmd.PersistentFlags().String("models.smart", config.DefaultModelSmart, "model used for text drafting")
}
