package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pocketvibe/pocketvibe/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pocketvibe configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure your Pocket Vibe instance and writes a pocketvibe.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
