package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/client"
)

var (
	shareTTL      time.Duration
	shareExpires  string
	shareEmail    string
	shareLanguage string

	shareCmd = &cobra.Command{
		Use:   "share",
		Short: "issue and inspect project share links",
	}

	shareIssueCmd = &cobra.Command{
		Use:   "issue <projectId>",
		Short: "issue a new share link and PIN for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			opts := client.IssueOptions{NotifyEmail: shareEmail, NotifyLanguage: shareLanguage}

			switch {
			case shareExpires != "":
				t, err := time.Parse(time.RFC3339, shareExpires)
				if err != nil {
					return fmt.Errorf("--expires must be RFC3339: %w", err)
				}

				opts.ExpiresAt = &t
			case shareTTL > 0:
				t := time.Now().Add(shareTTL)
				opts.ExpiresAt = &t
			}

			g, err := c.Shares().Issue(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), g)
		},
	}

	shareShowCmd = &cobra.Command{
		Use:   "show <projectId>",
		Short: "show the newest active share of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			g, err := c.Shares().FetchActive(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if g == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no active share")

				return nil
			}

			return printJSON(cmd.OutOrStdout(), g)
		},
	}
)

// registerShareCommands 注册分享相关命令.
func registerShareCommands() {
	shareIssueCmd.Flags().DurationVar(&shareTTL, "ttl", 0, "lifetime of the grant, server default when empty")
	shareIssueCmd.Flags().StringVar(&shareExpires, "expires", "", "absolute expiry (RFC3339), overrides --ttl")
	shareIssueCmd.Flags().StringVar(&shareEmail, "notify-email", "", "queue a notification to this address")
	shareIssueCmd.Flags().StringVar(&shareLanguage, "notify-language", "", "language of the notification")

	shareCmd.AddCommand(shareIssueCmd, shareShowCmd)
	rootCmd.AddCommand(shareCmd)
}
