package slims

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sicko7947/slims/criteria"
)

// Parameter describes one input or output field of a step. Parameters are
// declarative metadata sent at registration.
type Parameter map[string]any

// Extra holds optional parameter keys such as defaultValue or required
type Extra map[string]any

// Parameter types understood by the server
const (
	TypeString         = "STRING"
	TypeText           = "TEXT"
	TypePassword       = "PASSWORD"
	TypeInteger        = "INTEGER"
	TypeFloat          = "FLOAT"
	TypeBoolean        = "BOOLEAN"
	TypeDate           = "DATE"
	TypeDateTime       = "DATETIME"
	TypeTime           = "TIME"
	TypeFile           = "FILE"
	TypeTable          = "TABLE"
	TypeSingleChoice   = "SINGLE_CHOICE"
	TypeMultipleChoice = "MULTIPLE_CHOICE"
	TypeValueMap       = "VALUEMAP"
)

func simpleInput(name, label, typ string, extra []Extra) Parameter {
	p := Parameter{"name": name, "label": label, "type": typ}
	return p.with(extra)
}

func (p Parameter) with(extra []Extra) Parameter {
	for _, e := range extra {
		for k, v := range e {
			p[k] = v
		}
	}
	return p
}

// TextInput is a short text field
func TextInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeString, extra)
}

// RichTextInput is a multi-line rich text field
func RichTextInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeText, extra)
}

// PasswordInput is a masked text field
func PasswordInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypePassword, extra)
}

// IntegerInput is an integer field
func IntegerInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeInteger, extra)
}

// FloatInput is a decimal field
func FloatInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeFloat, extra)
}

// BooleanInput is a yes/no field
func BooleanInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeBoolean, extra)
}

// DateInput is a date field
func DateInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeDate, extra)
}

// DateTimeInput is a date and time field
func DateTimeInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeDateTime, extra)
}

// TimeInput is a time of day field
func TimeInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeTime, extra)
}

// FileInput is a file upload field
func FileInput(name, label string, extra ...Extra) Parameter {
	return simpleInput(name, label, TypeFile, extra)
}

// TableInput is a table whose columns are the sub-parameters
func TableInput(name, label string, subParameters []Parameter, extra ...Extra) Parameter {
	p := simpleInput(name, label, TypeTable, nil)
	p["subParameters"] = nonNil(subParameters)
	return p.with(extra)
}

// SingleChoiceWithFieldListInput lets the user pick one of fields.
// fieldTypes, when given, holds the type of each field.
func SingleChoiceWithFieldListInput(name, label string, fields, fieldTypes []string, extra ...Extra) Parameter {
	return choiceWithFieldList(name, label, TypeSingleChoice, fields, fieldTypes, extra)
}

// MultipleChoiceWithFieldListInput lets the user pick several of fields
func MultipleChoiceWithFieldListInput(name, label string, fields, fieldTypes []string, extra ...Extra) Parameter {
	return choiceWithFieldList(name, label, TypeMultipleChoice, fields, fieldTypes, extra)
}

func choiceWithFieldList(name, label, typ string, fields, fieldTypes []string, extra []Extra) Parameter {
	entries := make([]map[string]any, 0, len(fields))
	for i, field := range fields {
		var fieldType any
		if i < len(fieldTypes) {
			fieldType = fieldTypes[i]
		}
		entries = append(entries, map[string]any{"type": fieldType, "field": field})
	}
	p := simpleInput(name, label, typ, nil)
	p["fieldList"] = map[string]any{"entries": entries}
	return p.with(extra)
}

// ValueMap selects the choices of a value map input. Empty fields are sent as null.
type ValueMap struct {
	// Table lists the records of a table as choices
	Table string
	// Filter restricts the listed records
	Filter criteria.Criterion
	// Reference names a value map output of a previous step
	Reference string
	// FixedChoiceCustomField takes the choices of a custom field
	FixedChoiceCustomField string
}

func (v ValueMap) toMap() map[string]any {
	var filter any
	if v.Filter != nil {
		filter = v.Filter.ToMap()
	}
	return map[string]any{
		"filter":                 filter,
		"reference":              nullable(v.Reference),
		"table":                  nullable(v.Table),
		"fixedChoiceCustomField": nullable(v.FixedChoiceCustomField),
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// SingleChoiceWithValueMapInput lets the user pick one value of a value map
func SingleChoiceWithValueMapInput(name, label string, valueMap ValueMap, extra ...Extra) Parameter {
	p := simpleInput(name, label, TypeSingleChoice, nil)
	p["valueMap"] = valueMap.toMap()
	return p.with(extra)
}

// MultipleChoiceWithValueMapInput lets the user pick several values of a value map
func MultipleChoiceWithValueMapInput(name, label string, valueMap ValueMap, extra ...Extra) Parameter {
	p := simpleInput(name, label, TypeMultipleChoice, nil)
	p["valueMap"] = valueMap.toMap()
	return p.with(extra)
}

// FileOutput declares that the step returns a file, see FileValue
func FileOutput() Parameter {
	return Parameter{"name": "file", "type": TypeFile}
}

// ValueMapOutput declares a value map that later steps can reference
func ValueMapOutput(name, datatype string) Parameter {
	return Parameter{"name": name, "datatype": datatype, "type": TypeValueMap}
}

// FileValue reads a file into the form expected for a file output
func FileValue(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return map[string]any{
		"bytes":    base64.StdEncoding.EncodeToString(data),
		"fileName": filepath.Base(path),
	}, nil
}
