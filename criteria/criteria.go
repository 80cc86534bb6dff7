// Package criteria builds the filter expressions accepted by the SLIMS
// advanced search resource.
//
// A Criterion is either a leaf Expression (field, operator, value) or a
// Junction combining other criteria with and/or/not. Field names are not
// validated locally; unknown fields surface as server errors at fetch time.
package criteria

import (
	"encoding/json"
	"reflect"
	"time"
)

// Operator is a comparison operator understood by the server
type Operator string

const (
	OpEquals           Operator = "equals"
	OpEqualsIgnoreCase Operator = "iEquals"
	OpNotEqual         Operator = "iNotEqual"
	OpIsNull           Operator = "isNull"
	OpNotNull          Operator = "notNull"
	OpStartsWith       Operator = "iStartsWith"
	OpEndsWith         Operator = "iEndsWith"
	OpContains         Operator = "iContains"
	OpBetweenInclusive Operator = "betweenInclusive"
	OpInSet            Operator = "inSet"
	OpNotInSet         Operator = "notInSet"
	OpLessThan         Operator = "lessThan"
	OpGreaterThan      Operator = "greaterThan"
	OpLessOrEqual      Operator = "lessOrEqual"
	OpGreaterOrEqual   Operator = "greaterOrEqual"
)

// JunctionType is the boolean combinator of a Junction
type JunctionType string

const (
	And JunctionType = "and"
	Or  JunctionType = "or"
	Not JunctionType = "not"
)

// isNaField is the pseudo field used to filter on "not applicable" custom fields
const isNaField = "isNaFilter"

// Criterion is a node of a filter expression tree
type Criterion interface {
	// ToMap returns the wire representation of the criterion
	ToMap() map[string]any
}

// Expression is a leaf criterion on a single field
type Expression struct {
	field    string
	operator Operator
	value    any
	start    any
	end      any
	between  bool
}

// Field returns the constrained field name
func (e *Expression) Field() string {
	return e.field
}

// Operator returns the comparison operator
func (e *Expression) Operator() Operator {
	return e.operator
}

// ToMap implements Criterion
func (e *Expression) ToMap() map[string]any {
	m := map[string]any{
		"fieldName": e.field,
		"operator":  string(e.operator),
	}
	if e.between {
		m["start"] = wireValue(e.start)
		m["end"] = wireValue(e.end)
		return m
	}
	if truthy(e.value) {
		m["value"] = wireValue(e.value)
	}
	return m
}

// MarshalJSON encodes the expression in its wire form
func (e *Expression) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToMap())
}

// Junction combines child criteria. Add is the only mutator.
type Junction struct {
	operator JunctionType
	members  []Criterion
}

// Add appends a member and returns the same junction
func (j *Junction) Add(member Criterion) *Junction {
	j.members = append(j.members, member)
	return j
}

// Type returns the junction's combinator
func (j *Junction) Type() JunctionType {
	return j.operator
}

// Members returns a copy of the junction's children in insertion order
func (j *Junction) Members() []Criterion {
	out := make([]Criterion, len(j.members))
	copy(out, j.members)
	return out
}

// ToMap implements Criterion
func (j *Junction) ToMap() map[string]any {
	members := make([]map[string]any, 0, len(j.members))
	for _, member := range j.members {
		members = append(members, member.ToMap())
	}
	return map[string]any{
		"operator": string(j.operator),
		"criteria": members,
	}
}

// MarshalJSON encodes the junction in its wire form
func (j *Junction) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.ToMap())
}

func newExpression(field string, operator Operator, value any) *Expression {
	return &Expression{field: field, operator: operator, value: value}
}

// wireValue converts values that have no natural JSON form.
// Times become ISO-8601 strings.
func wireValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return isoFormat(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return isoFormat(*t)
	case []time.Time:
		out := make([]string, len(t))
		for i, tt := range t {
			out[i] = isoFormat(tt)
		}
		return out
	}
	return v
}

func isoFormat(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z07:00")
	}
	return t.Format("2006-01-02T15:04:05.000000Z07:00")
}

// truthy reports whether a value would be kept in the wire form.
// nil, zero numbers, empty strings, false, empty collections and the zero
// time are dropped.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	if t, ok := v.(time.Time); ok {
		return !t.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return false
		}
		return truthy(rv.Elem().Interface())
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	}
	return true
}
