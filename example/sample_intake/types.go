package sample_intake

// SelectInput is the form of the first step
type SelectInput struct {
	Prefix string `json:"prefix"`
}

// SelectOutput lists the pending samples found
type SelectOutput struct {
	Samples []int64 `json:"samples"`
	Count   int     `json:"count"`
}

// ApproveInput carries the samples picked in the first step
type ApproveInput struct {
	Samples []int64 `json:"samples"`
	Comment string  `json:"comment"`
}

// ApproveOutput summarizes the approval
type ApproveOutput struct {
	Approved int `json:"approved"`
}
