package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/criteria"
)

var (
	fetchWhere  []string
	fetchAny    bool
	fetchSort   []string
	fetchStart  int
	fetchEnd    int
	fetchFields []string
	fetchLimit  int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <table>",
	Short: "Fetch the records of a table matching criteria",
	Long: `Fetch the records of a table. Each --where holds one condition:

  field=value   equals
  field!value   not equal (case insensitive)
  field~value   contains (case insensitive)
  field^value   starts with (case insensitive)
  field$value   ends with (case insensitive)

Conditions are combined with "and", or with "or" when --any is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		crit, err := parseWhere(fetchWhere, fetchAny)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}

		opts := []slims.FetchOption{slims.SortBy(fetchSort...)}
		if cmd.Flags().Changed("start") {
			opts = append(opts, slims.StartRow(fetchStart))
		}
		if cmd.Flags().Changed("end") {
			opts = append(opts, slims.EndRow(fetchEnd))
		}

		records, err := client.Fetch(commandContext(cmd), args[0], crit, opts...)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), records, fetchFields, fetchLimit)
	},
}

func init() {
	fetchCmd.Flags().StringArrayVarP(&fetchWhere, "where", "w", nil, "Condition, e.g. cntn_id=DNA1 (repeatable)")
	fetchCmd.Flags().BoolVar(&fetchAny, "any", false, "Match any condition instead of all")
	fetchCmd.Flags().StringSliceVar(&fetchSort, "sort", nil, "Sort fields, prefix with - for descending")
	fetchCmd.Flags().IntVar(&fetchStart, "start", 0, "First row")
	fetchCmd.Flags().IntVar(&fetchEnd, "end", 0, "Last row")
	fetchCmd.Flags().StringSliceVar(&fetchFields, "fields", nil, "Columns to print (default all)")
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Maximum number of records to print")
}

// whereOperators maps a condition separator to its criterion
var whereOperators = []struct {
	sep   string
	build func(field string, value any) *criteria.Expression
}{
	{"=", criteria.Equals},
	{"!", criteria.NotEquals},
	{"~", criteria.Contains},
	{"^", criteria.StartsWith},
	{"$", criteria.EndsWith},
}

// parseWhere turns --where conditions into one criterion, nil when empty
func parseWhere(conditions []string, matchAny bool) (criteria.Criterion, error) {
	if len(conditions) == 0 {
		return nil, nil
	}

	junction := criteria.Conjunction()
	if matchAny {
		junction = criteria.Disjunction()
	}

	for _, cond := range conditions {
		expr, err := parseCondition(cond)
		if err != nil {
			return nil, err
		}
		if len(conditions) == 1 {
			return expr, nil
		}
		junction.Add(expr)
	}
	return junction, nil
}

func parseCondition(cond string) (*criteria.Expression, error) {
	pos, op := -1, -1
	for i, candidate := range whereOperators {
		if idx := strings.Index(cond, candidate.sep); idx > 0 && (pos == -1 || idx < pos) {
			pos, op = idx, i
		}
	}
	if op == -1 {
		return nil, fmt.Errorf("invalid condition %q, expected field<op>value", cond)
	}

	field := cond[:pos]
	value := cond[pos+len(whereOperators[op].sep):]
	return whereOperators[op].build(field, value), nil
}
