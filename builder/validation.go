package builder

import (
	"github.com/sicko7947/slims"
)

// ValidateFlow performs comprehensive validation on a flow
func ValidateFlow(f *slims.Flow) error {
	if f == nil {
		return slims.NewConfigError("flow is nil")
	}
	if f.ID == "" {
		return slims.NewConfigError("flow id is required")
	}
	if f.Name == "" {
		return slims.NewConfigError("flow %s has no name", f.ID)
	}
	if f.Usage == "" {
		return slims.NewConfigError("flow %s has no usage", f.ID)
	}
	if err := ValidateSteps(f); err != nil {
		return err
	}
	return ValidateUniqueNames(f)
}

// ValidateSteps ensures the flow has steps and each one can run
func ValidateSteps(f *slims.Flow) error {
	if len(f.Steps) == 0 {
		return slims.NewConfigError("flow %s has no steps", f.ID)
	}

	for i, step := range f.Steps {
		if step == nil {
			return slims.NewConfigError("step %s is nil", f.Route(i))
		}
		if step.Name() == "" {
			return slims.NewConfigError("step %s has no name", f.Route(i))
		}
		if step.Action() == nil {
			return slims.NewConfigError("step %q (%s) has no action", step.Name(), f.Route(i))
		}
	}
	return nil
}

// ValidateUniqueNames ensures no two steps share a displayed name
func ValidateUniqueNames(f *slims.Flow) error {
	seen := make(map[string]int, len(f.Steps))
	for i, step := range f.Steps {
		if step == nil {
			continue
		}
		if first, ok := seen[step.Name()]; ok {
			return slims.NewConfigError("step name %q used at %s and %s", step.Name(), f.Route(first), f.Route(i))
		}
		seen[step.Name()] = i
	}
	return nil
}
