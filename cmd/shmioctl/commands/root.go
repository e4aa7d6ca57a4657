// Package commands implements the shmioctl CLI: a small produce/consume
// front end over a shmio segment, for manual testing and demos.
package commands

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "shmioctl",
	Short:         "Inspect and drive a shmio shared-memory append log",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a shmioctl config file (default: none, use flags/env)")

	rootCmd.AddCommand(produceCmd)
	rootCmd.AddCommand(consumeCmd)
	rootCmd.AddCommand(inspectCmd)
}
