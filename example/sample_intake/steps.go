package sample_intake

import (
	"fmt"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/criteria"
)

// ContentTable is the table samples live in
const ContentTable = "Content"

func NewSelectStep() *slims.Step {
	return slims.NewStep(
		"Select pending samples",
		slims.TypedAction(func(run *slims.FlowRun, input SelectInput) (SelectOutput, error) {
			crit := criteria.Conjunction().
				Add(criteria.StartsWith("cntn_id", input.Prefix)).
				Add(criteria.Equals("cntn_status", int(slims.ContentStatusPending)))

			records, err := run.Client().Fetch(run, ContentTable, crit, slims.SortBy("cntn_id"))
			if err != nil {
				return SelectOutput{}, err
			}

			out := SelectOutput{Samples: make([]int64, 0, len(records))}
			for _, r := range records {
				out.Samples = append(out.Samples, r.PK())
			}
			out.Count = len(out.Samples)

			run.Logger.Info().Str("prefix", input.Prefix).Int("count", out.Count).Msg("Selected pending samples")
			return out, nil
		}),
		slims.WithInput(
			slims.TextInput("prefix", "Sample id prefix", slims.Extra{"required": true}),
		),
		slims.WithOutput(
			slims.ValueMapOutput("samples", ContentTable),
		),
	)
}

func NewApproveStep() *slims.Step {
	return slims.NewStep(
		"Approve samples",
		slims.TypedAction(func(run *slims.FlowRun, input ApproveInput) (ApproveOutput, error) {
			if err := run.CheckUserSecret(); err != nil {
				return ApproveOutput{}, err
			}

			for _, pk := range input.Samples {
				record, err := run.Client().FetchByPK(run, ContentTable, pk)
				if err != nil {
					return ApproveOutput{}, err
				}
				if record == nil {
					return ApproveOutput{}, fmt.Errorf("sample %d no longer exists", pk)
				}
				if _, err := record.Update(run, map[string]any{
					"cntn_status": int(slims.ContentStatusApproved),
				}); err != nil {
					return ApproveOutput{}, err
				}
			}

			msg := fmt.Sprintf("Approved %d samples", len(input.Samples))
			if input.Comment != "" {
				msg += ": " + input.Comment
			}
			if err := run.Log(msg); err != nil {
				return ApproveOutput{}, err
			}
			return ApproveOutput{Approved: len(input.Samples)}, nil
		}),
		slims.WithInput(
			slims.MultipleChoiceWithValueMapInput("samples", "Samples", slims.ValueMap{Reference: "samples"}),
			slims.RichTextInput("comment", "Comment"),
		),
		slims.Async(),
	)
}
