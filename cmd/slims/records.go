package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sicko7947/slims"
)

var getCmd = &cobra.Command{
	Use:   "get <table> <pk>",
	Short: "Show one record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := fetchRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), []*slims.Record{record}, nil, 0)
	},
}

var followCmd = &cobra.Command{
	Use:   "follow <table> <pk> <link>",
	Short: "Show the records a link of a record points at",
	Long:  `Follow a link of a record. Incoming links start with "-", e.g. -rslt_fk_content.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := fetchRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		link := args[2]
		var records []*slims.Record
		if len(link) > 0 && link[0] == '-' {
			records, err = record.FollowIncoming(ctx, link)
		} else {
			var target *slims.Record
			target, err = record.Follow(ctx, link)
			if target != nil {
				records = []*slims.Record{target}
			}
		}
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), records, nil, 0)
	},
}

var addCmd = &cobra.Command{
	Use:   "add <table> <json-values>",
	Short: "Create a record",
	Example: `  slims add Content '{"cntn_id":"DNA9","cntn_status":10,"cntn_fk_contentType":1}'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args[1])
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		record, err := client.Add(commandContext(cmd), args[0], values)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), []*slims.Record{record}, nil, 0)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <table> <pk> <json-values>",
	Short: "Change columns of a record",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseValues(args[2])
		if err != nil {
			return err
		}
		record, err := fetchRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		updated, err := record.Update(commandContext(cmd), values)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), []*slims.Record{updated}, nil, 0)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <table> <pk>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		record, err := fetchRecord(cmd, args[0], args[1])
		if err != nil {
			return err
		}
		if err := record.Remove(commandContext(cmd)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %d\n", record.TableName(), record.PK())
		return nil
	},
}

// fetchRecord loads the record named by table and pk arguments
func fetchRecord(cmd *cobra.Command, table, pkArg string) (*slims.Record, error) {
	pk, err := strconv.ParseInt(pkArg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid primary key %q: %w", pkArg, err)
	}

	client, err := newClient()
	if err != nil {
		return nil, err
	}

	record, err := client.FetchByPK(commandContext(cmd), table, pk)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%s %d not found", table, pk)
	}
	return record, nil
}

func parseValues(arg string) (map[string]any, error) {
	var values map[string]any
	if err := json.Unmarshal([]byte(arg), &values); err != nil {
		return nil, fmt.Errorf("values must be a JSON object: %w", err)
	}
	return values, nil
}
