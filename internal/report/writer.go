package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Format is an output encoding
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, csv or json)", s)
}

// Write renders the table in the given format
func Write(w io.Writer, t *Table, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		return WriteJSON(w, t)
	default:
		return WriteText(w, t)
	}
}

// WriteCSV writes a header row followed by one row per position
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(t.Cells(i)); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole table as indented JSON
func WriteJSON(w io.Writer, t *Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteText writes an aligned console table with a summary footer
func WriteText(w io.Writer, t *Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(tw, strings.Join(t.Headers(), "\t")+"\t")
	for i := range t.Rows {
		fmt.Fprintln(tw, strings.Join(t.Cells(i), "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write text: %w", err)
	}

	_, err := fmt.Fprintf(w, "\nStrategy: %s  Positions: %d  Capital: %s  Per position: %s  Invested: %s  Cash: %s\n",
		t.Strategy,
		len(t.Rows),
		t.Capital.StringFixed(2),
		t.PositionSize.StringFixed(2),
		t.Invested.StringFixed(2),
		t.Cash.StringFixed(2),
	)
	return err
}
