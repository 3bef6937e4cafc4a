// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package nacha

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RecordLength is the width of every NACHA record, excluding the line terminator.
const RecordLength = 94

// FieldType describes which character class a Field accepts.
type FieldType int

const (
	Numeric FieldType = iota
	Alpha
	Alphanumeric
	// RoutingNumber values are checked by the routing number rules rather than a regex.
	RoutingNumber
)

func (t FieldType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Alpha:
		return "alpha"
	case Alphanumeric:
		return "alphanumeric"
	case RoutingNumber:
		return "ABA"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Field is one fixed-width column of a record.
//
// Number fields hold a decimal dollar amount ("35.21", "3521") and are written
// as two implied decimal places. Blank fields are written as spaces and skip
// data type checks.
type Field struct {
	Name     string
	Width    int
	Position int
	Required bool
	Type     FieldType
	Value    string
	Number   bool
	Blank    bool
	PadChar  byte
}

// Set replaces the field's value.
func (f *Field) Set(v string) {
	f.Value = v
}

func (f *Field) padChar() byte {
	if f.PadChar == 0 {
		return '0'
	}
	return f.PadChar
}

// Serialize writes fields in ascending Position order, starting at 1. Positions
// must form a contiguous run, otherwise ErrPositionGap is returned. Values are
// never truncated; callers enforce widths through ValidateLengths.
func Serialize(fields []*Field) (string, error) {
	byPosition := make(map[int]*Field, len(fields))
	for i := range fields {
		byPosition[fields[i].Position] = fields[i]
	}

	var buf strings.Builder
	for pos := 1; pos <= len(fields); pos++ {
		f, ok := byPosition[pos]
		if !ok {
			return "", fmt.Errorf("position %d: %w", pos, ErrPositionGap)
		}
		switch {
		case f.Blank || f.Type == Alphanumeric:
			buf.WriteString(padRight(f.Value, f.Width, ' '))
		case f.Number:
			buf.WriteString(padLeft(formatAmount(f.Value), f.Width, f.padChar()))
		default:
			buf.WriteString(padLeft(f.Value, f.Width, f.padChar()))
		}
	}
	return buf.String(), nil
}

// Deserialize slices line by the widths of fields, in slice order, and returns
// each trimmed value keyed by field name. A short line yields empty values for
// the fields it does not reach.
func Deserialize(line string, fields []*Field) map[string]string {
	out := make(map[string]string, len(fields))
	offset := 0
	for i := range fields {
		end := offset + fields[i].Width
		switch {
		case offset >= len(line):
			out[fields[i].Name] = ""
		case end > len(line):
			out[fields[i].Name] = strings.TrimSpace(line[offset:])
		default:
			out[fields[i].Name] = strings.TrimSpace(line[offset:end])
		}
		offset = end
	}
	return out
}

func mustSerialize(fields []*Field) string {
	line, err := Serialize(fields)
	if err != nil {
		panic(fmt.Sprintf("nacha: record table: %v", err))
	}
	return line
}

// formatAmount renders a decimal amount with two places and no decimal point.
// Unparsable values are returned as-is so data type validation can report them.
func formatAmount(v string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return strings.Replace(d.StringFixed(2), ".", "", 1)
}

func padLeft(s string, width int, c byte) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(string(c), width-len(s)) + s
}

func padRight(s string, width int, c byte) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(string(c), width-len(s))
}

func truncate(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s
}
