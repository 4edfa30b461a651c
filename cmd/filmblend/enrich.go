package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mreid/filmblend/internal/db"
	"github.com/mreid/filmblend/internal/scrape"
)

var enrichLimit int

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Backfill metadata for films missing it",
	Long: `Re-scrape films whose stored record is missing genres, directors or the
watch count, so pairs stuck behind the readiness gate can be scored.`,
	RunE: runEnrich,
}

func init() {
	enrichCmd.Flags().IntVar(&enrichLimit, "limit", 0, "Max films to enrich (overrides config)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if enrichLimit != 0 {
		cfg.EnrichLimit = enrichLimit
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	client := newScrapeClient(cfg.UserAgent, cfg.PageDelayMS, cfg.UseBrowser)
	runner := scrape.NewRunner(client, database)

	count, err := runner.EnrichMissing(ctx, cfg.EnrichLimit)
	if err != nil {
		return err
	}
	fmt.Printf("Enriched %d films\n", count)
	return nil
}
