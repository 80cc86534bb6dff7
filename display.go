package slims

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Column datatypes with dedicated formatting
const (
	DatatypeQuantity = "QUANTITY"
	DatatypeDate     = "DATE"
)

// Printer writes records as plain text rows
type Printer struct {
	Out io.Writer
	// Location used for date columns; defaults to time.Local
	Location *time.Location
}

// Print writes a header line with fields, then one line per record.
// limit <= 0 prints every record.
func (p *Printer) Print(records []*Record, fields []string, limit int) error {
	if _, err := fmt.Fprintln(p.Out, strings.Join(fields, " ")); err != nil {
		return err
	}
	if limit > 0 && limit < len(records) {
		if _, err := fmt.Fprintf(p.Out, "Number of displayed results: %d\n\n", limit); err != nil {
			return err
		}
		records = records[:limit]
	}

	for _, record := range records {
		values := make([]string, 0, len(fields))
		for _, field := range fields {
			col, err := record.Column(field)
			if err != nil {
				return err
			}
			values = append(values, p.FormatColumn(col))
		}
		if _, err := fmt.Fprintln(p.Out, strings.Join(values, " ")); err != nil {
			return err
		}
	}
	return nil
}

// FormatColumn renders a column according to its datatype. Quantities get
// their unit. Dates are epoch milliseconds rendered by sub-type.
func (p *Printer) FormatColumn(col *Column) string {
	switch col.Datatype {
	case DatatypeQuantity:
		if col.Unit == "" {
			return col.String()
		}
		return col.String() + " " + col.Unit
	case DatatypeDate:
		t, err := col.Time()
		if err != nil {
			return col.String()
		}
		t = t.In(p.location())
		switch col.SubType {
		case "date":
			return t.Format("2006-01-02")
		case "datetime":
			return t.Format("2006-01-02 15:04:05")
		default:
			return t.Format("15:04")
		}
	}
	return col.String()
}

func (p *Printer) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}
