package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpn777/shmio/internal/config"
)

var initOutPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter shmioctl config file",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initOutPath, "out", "shmioctl.yaml", "path to write the config file to")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := config.Save(config.Default(), initOutPath); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", initOutPath)
	return nil
}
