// Package render turns tabular export data into CSV, JSON, or XML bytes
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	perr "brandpulse/internal/platform/errors"
	"brandpulse/internal/services/exports/domain"
)

// Column maps a row key to its human readable header
type Column struct {
	Key   string
	Label string
}

// Row holds one record keyed by column key
type Row map[string]any

// Table is format-independent export data. Columns fix the cell order;
// Root and Item name the XML envelope elements.
type Table struct {
	Root    string
	Item    string
	Columns []Column
	Rows    []Row
}

// Render produces the table in the requested format
func Render(format string, t Table) ([]byte, error) {
	switch format {
	case domain.FormatCSV:
		return CSV(t)
	case domain.FormatJSON:
		return JSON(t)
	case domain.FormatXML:
		return XML(t)
	default:
		return nil, perr.Newf(perr.ErrorCodeValidation, "unsupported export format: %s", format)
	}
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	switch format {
	case domain.FormatCSV:
		return "text/csv"
	case domain.FormatXML:
		return "application/xml"
	default:
		return "application/json"
	}
}

// CSV renders labeled headers followed by one line per row
func CSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Label
	}
	if err := w.Write(headers); err != nil {
		return nil, err
	}

	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			cells[i] = cell(row[c.Key])
		}
		if err := w.Write(cells); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSON renders the raw row objects, indented
func JSON(t Table) ([]byte, error) {
	return json.MarshalIndent(t.Rows, "", "  ")
}

// XML renders rows as repeated item elements under the root, one child
// element per column in declared order
func XML(t Table) ([]byte, error) {
	root := t.Root
	if root == "" {
		root = "data"
	}
	item := t.Item
	if item == "" {
		item = "item"
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	rootEl := xml.StartElement{Name: xml.Name{Local: root}}
	if err := enc.EncodeToken(rootEl); err != nil {
		return nil, err
	}
	for _, row := range t.Rows {
		itemEl := xml.StartElement{Name: xml.Name{Local: item}}
		if err := enc.EncodeToken(itemEl); err != nil {
			return nil, err
		}
		for _, c := range t.Columns {
			el := xml.StartElement{Name: xml.Name{Local: c.Key}}
			if err := enc.EncodeElement(cell(row[c.Key]), el); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(itemEl.End()); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(rootEl.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
