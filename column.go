package slims

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Column is one named value of a record. Every key sent by the server is
// retained, the common ones are also decoded into fields. Numbers are kept
// as json.Number so large integers survive decoding.
type Column struct {
	Name         string
	Value        any
	Datatype     string
	Unit         string
	DisplayValue string
	SubType      string
	Title        string

	fields map[string]any
}

// UnmarshalJSON keeps all server keys while decoding the well-known ones
func (c *Column) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := decodeJSON(data, &fields); err != nil {
		return fmt.Errorf("failed to decode column: %w", err)
	}

	c.fields = fields
	c.Name, _ = fields["name"].(string)
	c.Value = fields["value"]
	c.Datatype, _ = fields["datatype"].(string)
	c.Unit, _ = fields["unit"].(string)
	c.DisplayValue, _ = fields["displayValue"].(string)
	c.SubType, _ = fields["subType"].(string)
	c.Title, _ = fields["title"].(string)
	return nil
}

// MarshalJSON writes the column back in its server form
func (c Column) MarshalJSON() ([]byte, error) {
	if c.fields != nil {
		return json.Marshal(c.fields)
	}
	return json.Marshal(map[string]any{
		"name":     c.Name,
		"value":    c.Value,
		"datatype": c.Datatype,
	})
}

// Field returns any key the server sent for this column
func (c *Column) Field(key string) (any, bool) {
	v, ok := c.fields[key]
	return v, ok
}

// IsNull reports whether the column has no value
func (c *Column) IsNull() bool {
	return c.Value == nil
}

// String returns the value formatted as text. A null value is the empty string.
func (c *Column) String() string {
	switch v := c.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value as an integer
func (c *Column) Int() (int64, error) {
	switch v := c.Value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("column %s: %v is not an integer", c.Name, v)
		}
		return n, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("column %s: %v is not an integer", c.Name, v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("column %s: %T is not an integer", c.Name, c.Value)
}

// Float returns the value as a float
func (c *Column) Float() (float64, error) {
	switch v := c.Value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return f, nil
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", c.Name, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("column %s: %T is not a number", c.Name, c.Value)
}

// Bool returns the value as a boolean
func (c *Column) Bool() (bool, error) {
	if b, ok := c.Value.(bool); ok {
		return b, nil
	}
	return false, fmt.Errorf("column %s: %T is not a boolean", c.Name, c.Value)
}

// Time interprets the value as epoch milliseconds
func (c *Column) Time() (time.Time, error) {
	ms, err := c.Int()
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

// decodeJSON decodes server JSON keeping numbers as json.Number
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}
