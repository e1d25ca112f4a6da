package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/client"
)

var (
	filesProject  string
	filesSearch   string
	filesCategory string
	filesSort     string
	filesDesc     bool
	filesYes      bool

	filesCmd = &cobra.Command{
		Use:   "files",
		Short: "list, upload and delete project files through the API",
	}

	filesListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list active files of a project",
		Aliases: []string{"list"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			panel := c.NewPanel(filesProject, client.PanelOptions{})
			if err := panel.Refresh(cmd.Context()); err != nil {
				return err
			}

			order := client.Asc
			if filesDesc {
				order = client.Desc
			}

			view := panel.View(client.Query{
				Search:   filesSearch,
				Category: client.Category(filesCategory),
				Sort:     client.SortKey(filesSort),
				Order:    order,
			})

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tMIME\tUPLOADED\tBY")

			for _, f := range view {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
					f.ID, f.Name, f.Size, f.MimeType, f.UploadedAt.Format("2006-01-02 15:04"), f.UploadedBy)
			}

			return w.Flush()
		},
	}

	filesUploadCmd = &cobra.Command{
		Use:   "upload <path>...",
		Short: "upload local files to a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			out := cmd.ErrOrStderr()
			panel := c.NewPanel(filesProject, client.PanelOptions{
				OnProgress: func(p int) { fmt.Fprintf(out, "\rprogress %3d%%", p) },
			})

			selections := make([]client.Selection, 0, len(args))
			for _, path := range args {
				selections = append(selections, client.SelectionFromPath(path))
			}

			res, err := panel.UploadBatch(cmd.Context(), selections)
			fmt.Fprintln(out)

			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %d, failed %d, skipped %d\n", res.Uploaded, res.Failed, res.Skipped)

			if res.Failed > 0 {
				return fmt.Errorf("%d uploads failed", res.Failed)
			}

			return err
		},
	}

	filesRemoveCmd = &cobra.Command{
		Use:     "rm <fileId>",
		Short:   "soft delete a project file",
		Aliases: []string{"delete"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			panel := c.NewPanel(filesProject, client.PanelOptions{
				Confirm: func(rec client.FileRecord) bool {
					if filesYes {
						return true
					}

					fmt.Fprintf(cmd.ErrOrStderr(), "delete %s (%s)? [y/N] ", rec.Name, rec.ID)

					var answer string
					_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)

					return answer == "y" || answer == "Y"
				},
				OnNotice: func(n client.Notice) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", n.Level, n.Message)
				},
			})

			if err := panel.Refresh(cmd.Context()); err != nil {
				return err
			}

			return panel.Delete(cmd.Context(), args[0])
		},
	}
)

// registerFilesCommands 注册文件相关命令.
func registerFilesCommands() {
	filesCmd.PersistentFlags().StringVarP(&filesProject, "project", "p", "", "project id")
	_ = filesCmd.MarkPersistentFlagRequired("project")

	filesListCmd.Flags().StringVarP(&filesSearch, "search", "s", "", "case-insensitive name filter")
	filesListCmd.Flags().StringVar(&filesCategory, "category", "all", "all|images|documents|other")
	filesListCmd.Flags().StringVar(&filesSort, "sort", "date", "name|size|date")
	filesListCmd.Flags().BoolVar(&filesDesc, "desc", true, "sort descending")

	filesRemoveCmd.Flags().BoolVarP(&filesYes, "yes", "y", false, "do not ask for confirmation")

	filesCmd.AddCommand(filesListCmd, filesUploadCmd, filesRemoveCmd)
	rootCmd.AddCommand(filesCmd)
}
