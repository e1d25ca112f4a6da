package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/notify"
	"github.com/yeisme/projecthub/pkg/internal/storage/db"
)

var notifyLimit int

var (
	notifyCmd = &cobra.Command{
		Use:   "notify",
		Short: "Share notification outbox",
	}

	notifyPendingCmd = &cobra.Command{
		Use:   "pending",
		Short: "list queued share notifications, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := db.New(cmd.Context(), &configs.GetConfig().DB)
			if err != nil {
				return err
			}
			defer client.Close()

			pending, err := notify.NewOutbox(client.GetDB()).Pending(cmd.Context(), notifyLimit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCHANNEL\tRECIPIENT\tLANG\tPROJECT\tTOKEN\tCREATED")

			for _, n := range pending {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					n.ID, n.Channel, n.Recipient, n.Language, n.ProjectID, n.ShareToken, n.CreatedAt.Format("2006-01-02 15:04"))
			}

			return w.Flush()
		},
	}
)

// registerNotifyCommands 注册通知发件箱命令.
func registerNotifyCommands() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyPendingCmd)

	notifyPendingCmd.Flags().IntVar(&notifyLimit, "limit", 50, "maximum number of notifications to list")
}
