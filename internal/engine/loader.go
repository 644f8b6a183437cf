package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/xuri/excelize/v2"

	"salesdash/internal/models"
)

var (
	ErrMissingColumn     = errors.New("missing required column")
	ErrMalformedRow      = errors.New("malformed row")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// Required column headers.
const (
	ColCity         = "City"
	ColCustomerType = "Customer_type"
	ColGender       = "Gender"
	ColProductLine  = "Product line"
	ColTotal        = "Total"
	ColRating       = "Rating"
	ColTime         = "Time"
)

var requiredColumns = []string{
	ColCity, ColCustomerType, ColGender, ColProductLine, ColTotal, ColRating, ColTime,
}

// LoadOptions locates the table inside the source file.
type LoadOptions struct {
	// Sheet is the worksheet name (xlsx only).
	Sheet string
	// SkipRows is the number of rows above the header row (xlsx only).
	SkipRows int
	// Columns restricts the read to a lettered range such as "B:R" (xlsx only).
	Columns string
	// MaxRows caps the number of data rows read. Zero means no limit.
	MaxRows int
}

func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sheet:    "Sales",
		SkipRows: 3,
		Columns:  "B:R",
		MaxRows:  1000,
	}
}

// Load reads the dataset at path, choosing the reader by extension.
func Load(path string, opts LoadOptions) (*ColumnStore, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, opts)
	case ".csv":
		return LoadCSV(path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadXLSX reads the configured sheet of a spreadsheet.
func LoadXLSX(path string, opts LoadOptions) (*ColumnStore, error) {
	start := time.Now()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", opts.Sheet, path, err)
	}

	first, last, err := columnRange(opts.Columns)
	if err != nil {
		return nil, err
	}

	if len(rows) <= opts.SkipRows {
		return nil, fmt.Errorf("%w: %s has no header row at line %d", ErrMissingColumn, path, opts.SkipRows+1)
	}
	header := sliceColumns(rows[opts.SkipRows], first, last)
	body := rows[opts.SkipRows+1:]
	if opts.MaxRows > 0 && len(body) > opts.MaxRows {
		body = body[:opts.MaxRows]
	}
	for i := range body {
		body[i] = sliceColumns(body[i], first, last)
	}

	store, err := fromRecords(header, body, opts.SkipRows+2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Infof("Load complete. Source: %s. Rows: %d. Time: %v", path, store.Len(), time.Since(start))
	return store, nil
}

// LoadCSV reads a comma separated file whose first line is the header.
func LoadCSV(path string, opts LoadOptions) (*ColumnStore, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrMissingColumn, path)
		}
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	var body [][]string
	for opts.MaxRows <= 0 || len(body) < opts.MaxRows {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		body = append(body, rec)
	}

	store, err := fromRecords(header, body, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Infof("Load complete. Source: %s. Rows: %d. Time: %v", path, store.Len(), time.Since(start))
	return store, nil
}

// fromRecords maps the header onto the required columns and converts every
// non-blank record. firstLine is the 1-based source line of body[0], used in
// error messages.
func fromRecords(header []string, body [][]string, firstLine int) (*ColumnStore, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	b := newBuilder(len(body))
	for n, rec := range body {
		if blank(rec) {
			continue
		}
		line := firstLine + n
		cell := func(col string) string {
			if i := idx[col]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		total, err := parseAmount(cell(ColTotal))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d, column %q: %v", ErrMalformedRow, line, ColTotal, err)
		}
		rating, err := parseAmount(cell(ColRating))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d, column %q: %v", ErrMalformedRow, line, ColRating, err)
		}
		hour, err := ParseHour(cell(ColTime))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d, column %q: %v", ErrMalformedRow, line, ColTime, err)
		}

		if err := b.add(models.Row{
			City:         cell(ColCity),
			CustomerType: cell(ColCustomerType),
			Gender:       cell(ColGender),
			ProductLine:  cell(ColProductLine),
			Total:        total,
			Rating:       rating,
			Time:         cell(ColTime),
			Hour:         hour,
		}); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	return b.build(), nil
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
	"2006-01-02 15:04:05",
}

// ParseHour returns the hour of day of a time-of-day cell. Besides the usual
// clock layouts it accepts spreadsheet day fractions (0.5 is noon).
func ParseHour(s string) (int, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && !math.IsInf(f, 0) && !math.IsNaN(f) {
		frac := f - math.Floor(f)
		// Nudge up so 0.5416666 (13:00) does not truncate to 12.
		return int(frac*24+1e-9) % 24, nil
	}
	return 0, fmt.Errorf("unrecognised time of day %q", s)
}

func parseAmount(s string) (float64, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	if s == "" {
		return 0, errors.New("empty value")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return f, nil
}

// columnRange converts "B:R" into zero-based inclusive column indexes.
// An empty range selects every column.
func columnRange(r string) (int, int, error) {
	if r == "" {
		return 0, math.MaxInt32, nil
	}
	from, to, ok := strings.Cut(r, ":")
	if !ok {
		to = from
	}
	first, err := excelize.ColumnNameToNumber(strings.TrimSpace(from))
	if err != nil {
		return 0, 0, fmt.Errorf("column range %q: %w", r, err)
	}
	last, err := excelize.ColumnNameToNumber(strings.TrimSpace(to))
	if err != nil {
		return 0, 0, fmt.Errorf("column range %q: %w", r, err)
	}
	if last < first {
		return 0, 0, fmt.Errorf("column range %q is reversed", r)
	}
	return first - 1, last - 1, nil
}

func sliceColumns(row []string, first, last int) []string {
	if first >= len(row) {
		return nil
	}
	if last >= len(row) {
		return row[first:]
	}
	return row[first : last+1]
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
