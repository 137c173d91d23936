package csvcodec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/readlog/internal/domain"
	"github.com/MrSnakeDoc/readlog/internal/logger"
)

// ErrMalformedCSV is returned when the file as a whole cannot be read.
// Problems limited to one row never produce it.
var ErrMalformedCSV = errors.New("malformed csv")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is the outcome of a decode.
type Result struct {
	// Records are the candidates, in file order. Never nil.
	Records []domain.Record

	// Rejected counts rows dropped because they had no title.
	Rejected int

	// Skipped counts rows the CSV reader could not parse (bad quoting).
	Skipped int

	// Warnings describe fields that fell back to a default value.
	Warnings []string
}

// Decoder turns CSV bytes into candidate records.
type Decoder struct {
	logger logger.Logger
}

// NewDecoder creates a decoder logging row-level problems to log.
func NewDecoder(log logger.Logger) *Decoder {
	return &Decoder{logger: log}
}

type row struct {
	line  int
	cells []string
}

// Decode parses data. Accepted layouts:
//
//	ID,Title,Author,Status,...   (exported by Encode, header optional)
//	Title,Author,Status,...      (hand written, header optional)
//
// The first row is a header unless its first cell is an integer.
func (d *Decoder) Decode(data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrMalformedCSV)
	}

	res := &Result{Records: []domain.Record{}}

	rows, err := d.readRows(data, res)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return res, nil
	}

	if isHeader(rows[0].cells) {
		d.logger.Debug("csv header row detected", logger.Int("line", rows[0].line))
		rows = rows[1:]
	}

	for _, r := range rows {
		if rec, ok := d.decodeRow(r, res); ok {
			res.Records = append(res.Records, rec)
		}
	}

	d.logger.Info("csv decoded",
		logger.Int("records", len(res.Records)),
		logger.Int("rejected", res.Rejected),
		logger.Int("skipped", res.Skipped),
		logger.Int("warnings", len(res.Warnings)))

	return res, nil
}

// readRows reads every row, skipping those the CSV reader rejects.
// An unterminated quote makes the reader swallow every following line, so
// reading restarts on the line after the one that opened the quote.
func (d *Decoder) readRows(data []byte, res *Result) ([]row, error) {
	var rows []row
	base := 0 // lines of the original input before data

	for {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1 // allow variable column count

		resume := -1
		for resume < 0 {
			cells, err := reader.Read()
			if err == io.EOF {
				return rows, nil
			}
			if err != nil {
				var perr *csv.ParseError
				if !errors.As(err, &perr) {
					return nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
				}
				res.Skipped++
				d.logger.Warn("skipping unreadable csv row",
					logger.Int("line", base+perr.StartLine),
					logger.Error(err))
				if perr.Line > perr.StartLine {
					resume = perr.StartLine
				}
				continue
			}

			line, _ := reader.FieldPos(0)
			rows = append(rows, row{line: base + line, cells: cells})
		}

		data = skipLines(data, resume)
		base += resume
	}
}

// skipLines drops the first n lines of data.
func skipLines(data []byte, n int) []byte {
	for ; n > 0; n-- {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return nil
		}
		data = data[i+1:]
	}
	return data
}

func isHeader(cells []string) bool {
	if len(cells) == 0 {
		return true
	}
	first := strings.TrimSpace(cells[0])
	return strings.EqualFold(first, "id") || !isInteger(first)
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}

// decodeRow extracts one record. A leading integer cell is taken as an ID
// and skipped, so exported and hand written files share one decoder.
func (d *Decoder) decodeRow(r row, res *Result) (domain.Record, bool) {
	offset := 0
	if len(r.cells) > 0 && isInteger(r.cells[0]) {
		offset = 1
	}
	cell := func(i int) string {
		if offset+i < len(r.cells) {
			return strings.TrimSpace(r.cells[offset+i])
		}
		return ""
	}

	title := cell(0)
	if title == "" {
		res.Rejected++
		d.logger.Warn("rejecting csv row without title", logger.Int("line", r.line))
		return domain.Record{}, false
	}

	rec := domain.Record{
		Title:       title,
		Author:      cell(1),
		Status:      d.parseStatus(r.line, cell(2), res),
		CurrentPage: d.parseCurrentPage(r.line, cell(3), res),
		TotalPages:  d.parseTotalPages(r.line, cell(4), res),
		Summary:     cell(5),
		Thoughts:    cell(6),
	}
	return rec, true
}

func (d *Decoder) parseStatus(line int, text string, res *Result) domain.Status {
	if text == "" {
		return domain.DefaultStatus
	}
	s, ok := domain.ParseStatus(text)
	if !ok {
		d.warn(res, line, "unknown status %q, using %s", text, domain.DefaultStatus)
	}
	return s
}

func (d *Decoder) parseCurrentPage(line int, text string, res *Result) int {
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		d.warn(res, line, "invalid current page %q, using 0", text)
		return 0
	}
	return n
}

func (d *Decoder) parseTotalPages(line int, text string, res *Result) *int {
	if text == "" {
		return nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		d.warn(res, line, "invalid total pages %q, leaving empty", text)
		return nil
	}
	return &n
}

func (d *Decoder) warn(res *Result, line int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", line, msg))
	d.logger.Warn("csv field defaulted",
		logger.Int("line", line),
		logger.String("reason", msg))
}
