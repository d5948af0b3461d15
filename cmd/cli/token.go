package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zfogg/dailybrief/internal/auth"
)

var (
	tokenUsername string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token signed with JWT_SECRET",
	Long:  "Issue a bearer token for local testing. The token is accepted by the API's auth middleware.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is not set")
		}

		service := auth.NewService([]byte(cfg.JWTSecret)).WithTTL(tokenTTL)
		resp, err := service.IssueToken(args[0], tokenUsername)
		if err != nil {
			return err
		}

		return printResult(resp, func() {
			fmt.Println(resp.Token)
		})
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUsername, "username", "", "Display name carried in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.DefaultTTL, "Token lifetime")
}
