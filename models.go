package slims

import (
	"strconv"
	"time"
)

// StepStatus represents the current state of a step invocation
type StepStatus string

const (
	StepStatusReceived StepStatus = "RECEIVED"
	StepStatusRunning  StepStatus = "RUNNING"
	StepStatusDone     StepStatus = "DONE"
	StepStatusFailed   StepStatus = "FAILED"
)

// IsTerminal returns true if the status is a final state
func (s StepStatus) IsTerminal() bool {
	return s == StepStatusDone || s == StepStatusFailed
}

// String returns the string representation
func (s StepStatus) String() string {
	return string(s)
}

// Kind tells which capabilities a record carries
type Kind string

const (
	KindRecord     Kind = "RECORD"
	KindAttachment Kind = "ATTACHMENT"
)

// AttachmentTable is the reserved table name of attachment records
const AttachmentTable = "Attachment"

// tableKinds maps reserved table names to their record kind.
// Tables not listed are plain records.
var tableKinds = map[string]Kind{
	AttachmentTable: KindAttachment,
}

func kindOf(table string) Kind {
	if k, ok := tableKinds[table]; ok {
		return k
	}
	return KindRecord
}

// Link is a named relation of a record
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

// Incoming reports whether the link points at records referencing this one
func (l Link) Incoming() bool {
	return len(l.Rel) > 0 && l.Rel[0] == incomingMarker
}

// incomingMarker prefixes the names of incoming links
const incomingMarker = '-'

// Entity is the server representation of one row
type Entity struct {
	PK        int64    `json:"pk"`
	TableName string   `json:"tableName"`
	Columns   []Column `json:"columns"`
	Links     []Link   `json:"links,omitempty"`
}

// entityList is the envelope of every entity response
type entityList struct {
	Entities []Entity `json:"entities"`
}

// StepExecution tracks one in-flight step invocation
type StepExecution struct {
	// Identity
	RunGUID string `json:"flowRunGuid"`
	FlowID  string `json:"flowId"`
	Route   string `json:"route"`
	Index   int    `json:"index"`

	StepName     string `json:"stepName"`
	Asynchronous bool   `json:"asynchronous"`
	ActingUser   string `json:"actingUser,omitempty"`

	// Status
	Status StepStatus `json:"status"`

	// Timing
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key identifies a step execution within the tracker
func (s *StepExecution) Key() string {
	return ExecutionKey(s.RunGUID, s.Index)
}

// ExecutionKey builds the tracker key of a run's step
func ExecutionKey(runGUID string, index int) string {
	return runGUID + "#" + strconv.Itoa(index)
}
