// Package csvcodec converts reading records to and from CSV.
//
// Encoding is strict and deterministic. Decoding is deliberately lenient:
// files are hand edited, so one bad row never aborts an import.
package csvcodec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/readlog/internal/domain"
)

// TimeLayout is the timestamp format used in exported files.
const TimeLayout = "2006-01-02 15:04:05"

// Header lists the exported columns, in order.
var Header = []string{
	"ID",
	"Title",
	"Author",
	"Status",
	"Current Page",
	"Total Pages",
	"Summary",
	"Thoughts",
	"Created At",
	"Updated At",
}

// Encode writes a header row followed by one row per record, in input order.
// Absent values are rendered as empty cells and the status as its label.
func Encode(records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i := range records {
		if err := w.Write(encodeRow(&records[i])); err != nil {
			return nil, fmt.Errorf("write record %d: %w", records[i].ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeRow(r *domain.Record) []string {
	return []string{
		formatID(r.ID),
		r.Title,
		r.Author,
		formatStatus(r.Status),
		strconv.Itoa(r.CurrentPage),
		formatOptionalInt(r.TotalPages),
		r.Summary,
		r.Thoughts,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	}
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatStatus(s domain.Status) string {
	if s == "" {
		return ""
	}
	return s.Label()
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
