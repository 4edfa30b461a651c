package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mreid/filmblend/internal/db"
	"github.com/mreid/filmblend/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <handle>",
	Short: "Scrape one user's watch history into the database",
	Long: `Scrape a user's complete watch history, store it, and fetch metadata
for any films not already on record.`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	handle := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
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

	count, err := runner.SyncUser(ctx, handle)
	if err != nil {
		return err
	}
	fmt.Printf("Scraped %d films for %s\n", count, handle)
	return nil
}

func newScrapeClient(userAgent string, pageDelayMS int, useBrowser bool) *scrape.Client {
	opts := []scrape.Option{
		scrape.WithPageDelay(time.Duration(pageDelayMS) * time.Millisecond),
		scrape.WithBrowser(useBrowser),
	}
	if userAgent != "" {
		opts = append(opts, scrape.WithUserAgent(userAgent))
	}
	return scrape.NewClient(opts...)
}
