package cmd

import (
	"fmt"

	"github.com/josephlewis42/minish/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the shell audit log.",
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := configuration.ReadAuditLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		report := logger.NewReport()
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), string(out))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
}
