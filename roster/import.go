/*
Package roster reads employee rosters from spreadsheets.

PURPOSE:
  HR keeps the roster in Excel (sometimes exported to CSV). Import maps
  the sheet's columns onto rota.Employee by header name, so column order
  and header spelling ("FUNÇÃO", "Funcao", "FUNCAO") do not matter.

RULES:
  - NOME is required; rows without a name are skipped and reported
  - Names, posts, roles, branches, addresses and cities are upper-cased
  - JORNADA accepts loose names ("6x1 fixo", "12 X 36"); blank or unknown
    values fall back to the importer's default rotation
  - Dates accept YYYY-MM-DD, DD/MM/YYYY, DD-MM-YYYY, DDMMYYYY and Excel
    serial numbers; unreadable dates are dropped with a warning
  - A repeated name replaces the earlier row

SEE ALSO:
  - columns.go: header aliases and normalization
  - template.go: blank template export
*/
package roster

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

// Format is a roster file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: unsupported file type %q", generic.ErrInvalidImport, filepath.Ext(name))
}

// Issue describes a row that was skipped or a value that was ignored.
type Issue struct {
	Row    int    `json:"row"`
	Column Column `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	if i.Column == "" {
		return fmt.Sprintf("row %d: %s", i.Row, i.Reason)
	}
	return fmt.Sprintf("row %d: %s %q: %s", i.Row, i.Column, i.Value, i.Reason)
}

// Result is the outcome of one import.
type Result struct {
	BatchID   string
	Employees []rota.Employee
	// Posts are the distinct posts on the roster, CPF-looking values excluded.
	Posts    []string
	Skipped  []Issue
	Warnings []Issue
}

// Apply saves the imported employees and remembers their posts.
func (res *Result) Apply(ctx context.Context, repo rota.Repository) error {
	if err := repo.SaveEmployees(ctx, res.Employees); err != nil {
		return fmt.Errorf("failed to save roster %s: %w", res.BatchID, err)
	}
	if err := repo.AddPosts(ctx, res.Posts...); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}
	return nil
}

// Importer converts roster files into employees.
type Importer struct {
	// DefaultRotation applies when JORNADA is missing or unrecognized.
	DefaultRotation rota.Variant
}

func NewImporter(defaultRotation rota.Variant) Importer {
	if !defaultRotation.Valid() {
		defaultRotation = rota.DefaultVariant
	}
	return Importer{DefaultRotation: defaultRotation}
}

// Import reads a roster in the given format.
func (im Importer) Import(r io.Reader, format Format) (*Result, error) {
	switch format {
	case FormatXLSX:
		return im.ImportXLSX(r)
	case FormatCSV:
		return im.ImportCSV(r)
	}
	return nil, fmt.Errorf("%w: unsupported format %q", generic.ErrInvalidImport, format)
}

// ImportXLSX reads the first sheet of a workbook.
func (im Importer) ImportXLSX(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", generic.ErrInvalidImport)
	}
	// Raw values keep date cells as serial numbers instead of locale text.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sheet: %v", generic.ErrInvalidImport, err)
	}
	return im.FromRows(rows)
}

// ImportCSV reads a delimited file. UTF-8 and Latin-1 are accepted and the
// delimiter (; , or tab) is taken from the header line.
func (im Importer) ImportCSV(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		if data, err = charmap.ISO8859_1.NewDecoder().Bytes(data); err != nil {
			return nil, fmt.Errorf("%w: %v", generic.ErrInvalidImport, err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generic.ErrInvalidImport, err)
	}
	return im.FromRows(rows)
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// FromRows maps a header row plus data rows onto employees.
func (im Importer) FromRows(rows [][]string) (*Result, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty roster", generic.ErrInvalidImport)
	}
	cols := columnIndex(rows[0])
	if _, ok := cols[ColName]; !ok {
		return nil, fmt.Errorf("%w: column %s not found", generic.ErrInvalidImport, ColName)
	}

	res := &Result{BatchID: uuid.NewString()}
	byName := make(map[string]int)
	seenPost := make(map[string]bool)

	for i, row := range rows[1:] {
		rowNo := i + 2
		cell := func(c Column) string {
			idx, ok := cols[c]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := strings.ToUpper(cell(ColName))
		if name == "" {
			if !blankRow(row) {
				res.Skipped = append(res.Skipped, Issue{Row: rowNo, Reason: "missing name"})
			}
			continue
		}

		emp := rota.Employee{
			Name:     name,
			Post:     strings.ToUpper(cell(ColPost)),
			Rotation: im.rotation(cell(ColRotation), rowNo, res),
			Profile: rota.Profile{
				Registration: cell(ColRegistration),
				TaxID:        cell(ColTaxID),
				Role:         strings.ToUpper(cell(ColRole)),
				Branch:       strings.ToUpper(cell(ColBranch)),
				BranchTaxID:  cell(ColBranchTaxID),
				Address:      strings.ToUpper(cell(ColAddress)),
				City:         strings.ToUpper(cell(ColCity)),
			},
		}
		emp.Admission = dateCell(ColAdmission, cell(ColAdmission), rowNo, res)
		emp.Anchor = dateCell(ColFirstRest, cell(ColFirstRest), rowNo, res)

		if prev, ok := byName[name]; ok {
			res.Warnings = append(res.Warnings, Issue{Row: rowNo, Column: ColName, Value: name, Reason: "duplicate name, earlier row replaced"})
			res.Employees[prev] = emp
		} else {
			byName[name] = len(res.Employees)
			res.Employees = append(res.Employees, emp)
		}

		if emp.Post != "" && !IsTaxIDLike(emp.Post) && !seenPost[emp.Post] {
			seenPost[emp.Post] = true
			res.Posts = append(res.Posts, emp.Post)
		}
	}
	return res, nil
}

func (im Importer) rotation(value string, rowNo int, res *Result) rota.Variant {
	fallback := im.DefaultRotation
	if !fallback.Valid() {
		fallback = rota.DefaultVariant
	}
	if value == "" {
		return fallback
	}
	v, ok := rota.LookupVariant(value)
	if !ok {
		res.Warnings = append(res.Warnings, Issue{Row: rowNo, Column: ColRotation, Value: value, Reason: "unknown rotation, using " + string(fallback)})
		return fallback
	}
	return v
}

func dateCell(col Column, value string, rowNo int, res *Result) *generic.Date {
	if value == "" {
		return nil
	}
	d, err := ParseCellDate(value)
	if err != nil {
		res.Warnings = append(res.Warnings, Issue{Row: rowNo, Column: col, Value: value, Reason: "unreadable date, ignored"})
		return nil
	}
	return &d
}

// ParseCellDate parses a spreadsheet date: text layouts, DDMMYYYY or an
// Excel serial number.
func ParseCellDate(value string) (generic.Date, error) {
	d, err := generic.ParseDate(value)
	if err == nil {
		return d, nil
	}
	if len(value) == 8 && isDigits(value) {
		if d, err2 := generic.ParseDate(value[:2] + "/" + value[2:4] + "/" + value[4:]); err2 == nil {
			return d, nil
		}
	}
	if serial, perr := strconv.ParseFloat(value, 64); perr == nil && serial > 0 && serial < 2958466 {
		t, terr := excelize.ExcelDateToTime(serial, false)
		if terr == nil {
			return generic.DateOf(t), nil
		}
	}
	return generic.Date{}, err
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
