package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/seed"
	"github.com/zfogg/dailybrief/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables or indexes for the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := storage.Open(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer backend.Close()

		fmt.Printf("✅ %s store migrated\n", backend.Name)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [dev|test|clean]",
	Short: "Fill the store with fake content",
	Long: `Seed the configured store.
  dev   - users, articles for every topic across the window, comments, votes and pins
  test  - a few fixed users and one article per topic and date
  clean - remove all rows (SQL stores only, use with caution)`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dev", "test", "clean"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := "dev"
		if len(args) > 0 {
			mode = args[0]
		}

		backend, err := storage.Open(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer backend.Close()

		if mode == "clean" {
			if backend.DB == nil {
				return fmt.Errorf("clean is only supported for SQL stores")
			}
			if err := seed.Clean(backend.DB); err != nil {
				return err
			}
			fmt.Println("🧹 Store cleaned")
			return nil
		}

		latest := cfg.ContentLatestDate
		if latest == "" {
			latest = time.Now().UTC().Format(models.DateLayout)
		}
		seeder, err := seed.NewSeeder(backend.Store, latest, cfg.ContentWindowDays)
		if err != nil {
			return err
		}

		if mode == "test" {
			err = seeder.SeedTest(cmd.Context())
		} else {
			err = seeder.SeedDev(cmd.Context())
		}
		if err != nil {
			return err
		}
		fmt.Printf("🌱 Seeded %s data for %s through %s\n", mode, seeder.Dates()[0], latest)
		return nil
	},
}
