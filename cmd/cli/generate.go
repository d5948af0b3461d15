package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfogg/dailybrief/internal/content"
	"github.com/zfogg/dailybrief/internal/generation"
	"github.com/zfogg/dailybrief/internal/storage"
)

var (
	generateDate  string
	generateTopic string
	generateUser  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and store one article for a date and topic",
	Long: `Call the text model for (--date, --topic) exactly as POST /generate does,
store the result and print it. Custom topics need --user.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateTopic == "" {
			return fmt.Errorf("--topic is required")
		}

		backend, err := storage.Open(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer backend.Close()

		client, err := generation.NewClientFromConfig(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		service := generation.NewService(client, cfg.GenerationTimeout)

		resolver := content.NewResolver(backend.Articles, backend.Users, service, content.NewMemoryTracker(), content.Options{
			LatestDate: cfg.ContentLatestDate,
			WindowDays: cfg.ContentWindowDays,
		})
		if generateDate == "" {
			_, generateDate = resolver.Window()
		}
		if _, err := backend.Users.Ensure(cmd.Context(), generateUser, generateUser); err != nil {
			return err
		}

		started := time.Now()
		g, err := resolver.Generate(cmd.Context(), generateUser, generateDate, generateTopic)
		if err != nil {
			return err
		}

		return printResult(g.Article, func() {
			fmt.Printf("%s %s (%s, %s tier, %s)\n\n", g.Article.Emoji, g.Headline, g.Article.Date, g.Tier, time.Since(started).Round(time.Millisecond))
			fmt.Println(g.Analysis)
			fmt.Printf("\nstored as %s (%s)\n", g.Article.ID, g.Article.Kind)
		})
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateDate, "date", "", "Date to generate for (defaults to the latest servable date)")
	generateCmd.Flags().StringVar(&generateTopic, "topic", "", "Global topic id or custom topic id")
	generateCmd.Flags().StringVar(&generateUser, "user", "cli", "User the generation is attributed to")
}
