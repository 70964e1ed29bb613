package cmd

import (
	"fmt"

	"github.com/josephlewis42/minish/core/shell"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands the shell runs internally.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range shell.BuiltinNames() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
