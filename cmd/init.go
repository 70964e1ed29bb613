package cmd

import (
	"log"

	"github.com/josephlewis42/minish/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to the config directory.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		dir := cfgPath
		if dir == "" {
			dir = config.DefaultDir()
		}

		logger := log.New(cmd.ErrOrStderr(), "", 0)
		return config.Initialize(dir, logger)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
