package slims

import "github.com/rs/zerolog"

// ClientOption allows functional configuration of a Client
type ClientOption func(*Client)

// WithRepoLocation sets the local root of the server's file repository,
// used to resolve attachment paths without downloading them
func WithRepoLocation(path string) ClientOption {
	return func(c *Client) {
		c.repoLocation = path
	}
}

// WithLogger sets the client's logger. Flow runs derive their loggers from it.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// FetchOption configures an advanced search
type FetchOption func(*fetchQuery)

// SortBy orders the results. Prefix a field with "-" to sort descending.
func SortBy(fields ...string) FetchOption {
	return func(q *fetchQuery) {
		q.SortBy = append(q.SortBy, fields...)
	}
}

// StartRow sets the first row of the returned page
func StartRow(n int) FetchOption {
	return func(q *fetchQuery) {
		q.StartRow = &n
	}
}

// EndRow sets the last row of the returned page
func EndRow(n int) FetchOption {
	return func(q *fetchQuery) {
		q.EndRow = &n
	}
}

// StepOption allows functional configuration of steps
type StepOption func(*Step)

// Async makes the step run in the background. The callback returns at once
// and the server learns the outcome from the status update only.
func Async() StepOption {
	return func(s *Step) {
		s.async = true
	}
}

// Hidden hides the step in the server's user interface
func Hidden() StepOption {
	return func(s *Step) {
		s.hidden = true
	}
}

// WithInput declares the step's input parameters
func WithInput(params ...Parameter) StepOption {
	return func(s *Step) {
		s.input = append(s.input, params...)
	}
}

// WithOutput declares the step's output parameters
func WithOutput(params ...Parameter) StepOption {
	return func(s *Step) {
		s.output = append(s.output, params...)
	}
}
