package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pocketvibe",
	Short: "Turn a one-line idea into a shareable web app",
	Long: `Pocket Vibe takes a natural language prompt, asks an LLM to build a
single-page web app from it, and hosts the result at a shareable URL.
Every generated site is an installable PWA with Web Push notifications
for when the build finishes.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "pocketvibe.yml", "config file path")
}
