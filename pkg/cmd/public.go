package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/client"
)

var (
	publicPIN      string
	publicComment  string
	publicProject  string
	publicClientID string
	publicOut      string

	publicCmd = &cobra.Command{
		Use:   "public",
		Short: "call the public client portal API with a share token and PIN",
	}

	publicProjectCmd = &cobra.Command{
		Use:   "project <token>",
		Short: "show the project behind a share token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			p, err := c.Public().GetProject(cmd.Context(), args[0], publicPIN)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	publicDocumentsCmd = &cobra.Command{
		Use:   "documents <projectId>",
		Short: "list the documents of a shared project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			docs, err := c.Public().GetDocuments(cmd.Context(), args[0], publicPIN)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), docs)
		},
	}

	publicStatusCmd = &cobra.Command{
		Use:       "status <documentId> <approved|rejected>",
		Short:     "approve or reject a document",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{client.StatusApproved, client.StatusRejected},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			d, err := c.Public().UpdateDocumentStatus(cmd.Context(), client.StatusUpdate{
				DocumentID: args[0],
				Status:     args[1],
				Comment:    publicComment,
				ProjectID:  publicProject,
				ClientID:   publicClientID,
			}, publicPIN)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), d)
		},
	}

	publicPDFCmd = &cobra.Command{
		Use:   "pdf <documentId>",
		Short: "download the PDF of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			b, err := c.Public().DownloadDocumentPDF(cmd.Context(), args[0], publicPIN)
			if err != nil {
				return err
			}

			out := publicOut
			if out == "" {
				out = args[0] + ".pdf"
			}

			if err := os.WriteFile(out, b, 0o600); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(b), out)

			return nil
		},
	}
)

// registerPublicCommands 注册公共访问端命令.
func registerPublicCommands() {
	publicCmd.PersistentFlags().StringVar(&publicPIN, "pin", "", "share PIN")
	_ = publicCmd.MarkPersistentFlagRequired("pin")

	publicStatusCmd.Flags().StringVar(&publicProject, "project", "", "project id of the document")
	publicStatusCmd.Flags().StringVar(&publicComment, "comment", "", "optional comment")
	publicStatusCmd.Flags().StringVar(&publicClientID, "client-id", "", "client id recorded with the decision")
	_ = publicStatusCmd.MarkFlagRequired("project")

	publicPDFCmd.Flags().StringVarP(&publicOut, "output", "o", "", "output file (default {documentId}.pdf)")

	publicCmd.AddCommand(publicProjectCmd, publicDocumentsCmd, publicStatusCmd, publicPDFCmd)
	rootCmd.AddCommand(publicCmd)
}
