package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pocketvibe/pocketvibe/internal/db"
	mcpserver "github.com/pocketvibe/pocketvibe/internal/mcp"
	"github.com/pocketvibe/pocketvibe/internal/sites"
	"github.com/pocketvibe/pocketvibe/internal/tasks"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long: `Starts a Model Context Protocol (MCP) server on stdio, exposing site
generation tools so AI agents can build and inspect pocketvibe apps.
A worker must be running for generation jobs to complete.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.SitePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		taskClient := tasks.NewClient(cfg.Redis, cfg.Generation.Timeout)
		defer taskClient.Close()

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "pocketvibe MCP server started on stdio (base_url=%s)\n", cfg.BaseURL)

		srv := mcpserver.NewServer(sites.NewStore(database), taskClient, cfg.BaseURL)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
