package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Format selects a report sink.
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q, must be one of: json, table", s)
	}
}

// Write renders s in the given format.
func Write(w io.Writer, f Format, s Summary) error {
	switch f {
	case FormatTable:
		return WriteTable(w, s)
	case FormatJSON:
		return WriteJSON(w, s)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// WriteTable writes s as two tables: the totals, then one row per session
// that did not succeed.
func WriteTable(w io.Writer, s Summary) error {
	totals := tablewriter.NewWriter(w)
	totals.SetHeader([]string{"Run", "Total", "Succeeded", "Failed", "Timed out", "Duration ms", "p50 ms", "p95 ms", "Max ms"})
	totals.Append([]string{
		s.RunID,
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Succeeded),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.TimedOut),
		strconv.FormatInt(s.DurationMs, 10),
		strconv.FormatInt(s.Latency.P50, 10),
		strconv.FormatInt(s.Latency.P95, 10),
		strconv.FormatInt(s.Latency.Max, 10),
	})
	totals.Render()

	if len(s.Errors) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	errs := tablewriter.NewWriter(w)
	errs.SetHeader([]string{"Session", "Status", "Step", "Error"})
	errs.SetAutoWrapText(false)
	for _, e := range s.Errors {
		step := "-"
		if e.Step >= 0 {
			step = strconv.Itoa(e.Step)
		}
		errs.Append([]string{strconv.Itoa(e.Index), e.Status, step, e.Message})
	}
	errs.Render()
	return nil
}
