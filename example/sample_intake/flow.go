package sample_intake

import (
	"fmt"

	"github.com/sicko7947/slims"
	"github.com/sicko7947/slims/builder"
)

// NewSampleIntakeFlow constructs the sample intake flow
func NewSampleIntakeFlow() (*slims.Flow, error) {
	flow, err := builder.NewFlow("sampleIntake", "Approve pending samples").
		WithUsage("CONTENT_MANAGEMENT").
		Sequence(
			NewSelectStep(),
			NewApproveStep(),
		).
		Build()

	if err != nil {
		return nil, fmt.Errorf("failed to build flow: %w", err)
	}

	return flow, nil
}
