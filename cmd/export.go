package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pocketvibe/pocketvibe/internal/db"
	"github.com/pocketvibe/pocketvibe/internal/sites"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all published sites as static HTML files",
	Long: `Writes every successfully generated site to <dir>/<site-id>.html so a
pocketvibe instance can be backed up or mirrored behind a plain file
server. Files are written atomically; a crash never leaves a half
written page behind.`,
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

		published, err := sites.NewStore(database).ListPublished(context.Background())
		if err != nil {
			return fmt.Errorf("listing sites: %w", err)
		}
		if len(published) == 0 {
			fmt.Println("No published sites to export.")
			return nil
		}

		if err := os.MkdirAll(exportDir, 0755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}

		bar := progressbar.Default(int64(len(published)), "exporting")
		for _, site := range published {
			path := filepath.Join(exportDir, site.ID+".html")
			if err := renameio.WriteFile(path, []byte(site.Content), 0644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			bar.Add(1)
		}

		fmt.Printf("Exported %d site(s) to %s\n", len(published), exportDir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "export", "output directory")
	rootCmd.AddCommand(exportCmd)
}
