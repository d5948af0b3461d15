package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfogg/dailybrief/internal/feeds"
	"github.com/zfogg/dailybrief/internal/models"
	"github.com/zfogg/dailybrief/internal/storage"
)

var (
	ingestDate        string
	ingestTopic       string
	ingestMaxPerTopic int
	ingestTimeout     time.Duration
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Pull a day's RSS entries into the store",
	Long: `Fetch every configured feed, keep entries published on --date, drop
promotional headlines and store the newest entries per topic.
Defaults to yesterday (UTC).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestDate == "" {
			ingestDate = time.Now().UTC().AddDate(0, 0, -1).Format(models.DateLayout)
		}

		backend, err := storage.Open(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer backend.Close()

		in := feeds.NewIngester(nil, backend.Articles, feeds.Options{
			FeedTimeout: ingestTimeout,
			MaxPerTopic: ingestMaxPerTopic,
		})

		var reports []feeds.Report
		if ingestTopic != "" {
			report, err := in.IngestTopic(cmd.Context(), ingestTopic, ingestDate)
			if err != nil {
				return err
			}
			reports = append(reports, *report)
		} else if reports, err = in.IngestAll(cmd.Context(), ingestDate); err != nil {
			return err
		}

		return printResult(reports, func() {
			fmt.Printf("📥 Ingested %s\n", ingestDate)
			for _, r := range reports {
				fmt.Printf("  %-14s feeds ok %d, failed %d, stored %d\n", r.Topic, r.Fetched, r.Failed, r.Stored)
			}
		})
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "Date to ingest (YYYY-MM-DD)")
	ingestCmd.Flags().StringVar(&ingestTopic, "topic", "", "Only ingest one global topic")
	ingestCmd.Flags().IntVar(&ingestMaxPerTopic, "max", 5, "Maximum entries stored per topic")
	ingestCmd.Flags().DurationVar(&ingestTimeout, "feed-timeout", 15*time.Second, "Timeout for a single feed")
}
