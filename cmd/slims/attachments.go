package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sicko7947/slims"
)

var downloadDir string

var attachmentsCmd = &cobra.Command{
	Use:   "attachments <table> <pk>",
	Short: "List the attachments of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := fetchRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		attachments, err := record.Attachments(commandContext(cmd))
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), attachments, []string{"attm_pk", "attm_name"}, 0)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <table> <pk>",
	Short: "Download every attachment of a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := fetchRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		records, err := record.Attachments(ctx)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(downloadDir, 0o755); err != nil {
			return err
		}

		for _, r := range records {
			attachment, ok := r.AsAttachment()
			if !ok {
				continue
			}
			path := filepath.Join(downloadDir, fileName(attachment))
			if err := attachment.DownloadTo(ctx, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s\n", path)
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().StringVar(&downloadDir, "dir", ".", "Destination directory")
}

// fileName picks a local name for an attachment, falling back to its pk
func fileName(a *slims.Attachment) string {
	if col := a.Get("attm_name"); col != nil && !col.IsNull() {
		if name := filepath.Base(col.String()); name != "." && name != string(filepath.Separator) {
			return name
		}
	}
	return fmt.Sprintf("attachment-%d", a.PK())
}
