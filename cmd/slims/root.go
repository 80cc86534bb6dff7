package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/config"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "slims",
	Short: "Query and edit records of a SLIMS server",
	Long: `slims reads its connection settings from slims.yaml (or --config) and
SLIMS_* environment variables, e.g. SLIMS_URL, SLIMS_USERNAME, SLIMS_PASSWORD.

Examples:
  # Content records whose id starts with "DNA", newest first
  slims fetch Content --where 'cntn_id^DNA' --sort -cntn_createdOn --fields cntn_id,cntn_barCode

  # One record as JSON
  slims get Content 42 --format json

  # Follow a link
  slims follow Content 42 cntn_fk_location

  # Download every attachment of a record
  slims download Content 42 --dir ./files
`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./slims.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests")

	// Add all subcommands
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(attachmentsCmd)
	rootCmd.AddCommand(downloadCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newClient builds a client from the loaded configuration
func newClient() (*slims.Client, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger()
	if !verbose {
		logger = logger.Level(zerolog.WarnLevel)
	}

	client, err := cfg.Client(logger)
	if err != nil {
		return nil, err
	}
	if authorizer, ok := client.Authorizer(); ok && !authorizer.Authorized() {
		return nil, slims.NewConfigError("oauth needs an interactive authorization; use basic auth for the command line")
	}
	return client, nil
}

// printRecords writes records in the selected output format
func printRecords(out io.Writer, records []*slims.Record, fields []string, limit int) error {
	if outputFormat == "json" {
		if limit > 0 && limit < len(records) {
			records = records[:limit]
		}
		entities := make([]slims.Entity, 0, len(records))
		for _, r := range records {
			entities = append(entities, r.Entity())
		}
		return writeJSON(out, entities)
	}

	if len(fields) == 0 && len(records) > 0 {
		for _, col := range records[0].Columns() {
			fields = append(fields, col.Name)
		}
	}
	printer := &slims.Printer{Out: out}
	return printer.Print(records, fields, limit)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
