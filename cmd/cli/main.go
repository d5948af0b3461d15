package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/zfogg/dailybrief/internal/config"
	"github.com/zfogg/dailybrief/internal/logger"
)

var (
	cfg      *config.Config
	output   = "text" // "text" or "json"
	logLevel = "warn"
)

var rootCmd = &cobra.Command{
	Use:   "dailybrief",
	Short: "Daily Brief CLI - operate the news backend",
	Long: `Daily Brief CLI runs maintenance tasks against the configured store:
migrations, seeding, RSS ingestion, one-off generation and test tokens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfg, err = config.Load(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		// CLI runs log to the console only
		return logger.Initialize(logLevel, "-")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level: debug, info, warn, error")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// printResult writes v as JSON or hands it to text for human output
func printResult(v interface{}, text func()) error {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
