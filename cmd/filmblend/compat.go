package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mreid/filmblend/internal/compat"
	"github.com/mreid/filmblend/internal/db"
)

var compatCmd = &cobra.Command{
	Use:   "compat <user-a> <user-b>",
	Short: "Compute the compatibility report for two users",
	Long: `Score two already-scraped users against each other and print the full
report as JSON. Fails with a readiness breakdown when either history
still lacks metadata.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompat,
}

func init() {
	rootCmd.AddCommand(compatCmd)
}

func runCompat(cmd *cobra.Command, args []string) error {
	userA, userB := args[0], args[1]

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

	engine := compat.NewEngine(database)
	report, err := engine.Compatibility(ctx, userA, userB)
	if err != nil {
		var notReady *compat.NotReadyError
		if errors.As(err, &notReady) {
			fmt.Fprintf(os.Stderr, "Metadata not ready: %d films missing (run `filmblend enrich`)\n",
				notReady.Status.TotalMissing)
		}
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
