package builder

import "github.com/sicko7947/slims"

// FlowOption is a functional option for configuring flows
type FlowOption func(*slims.Flow)

// WithUsage sets the flow usage
func WithUsage(usage string) FlowOption {
	return func(f *slims.Flow) {
		f.Usage = usage
	}
}

// WithName sets the displayed flow name
func WithName(name string) FlowOption {
	return func(f *slims.Flow) {
		f.Name = name
	}
}

// ApplyOptions applies a list of options to a flow
func ApplyOptions(f *slims.Flow, opts ...FlowOption) {
	for _, opt := range opts {
		opt(f)
	}
}
