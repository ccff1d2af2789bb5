package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// Encodings reported by Decode
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-sig"
	EncodingLatin1  = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// xlsxMagic is the zip local file header every .xlsx starts with
var xlsxMagic = []byte{'P', 'K', 0x03, 0x04}

// Decode converts raw bytes to text. UTF-8 (with or without BOM) is tried
// first; anything that is not valid UTF-8 is decoded as Latin-1.
func Decode(raw []byte) (string, string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		body := raw[len(utf8BOM):]
		if utf8.Valid(body) {
			return string(body), EncodingUTF8BOM, nil
		}
		raw = body
	} else if utf8.Valid(raw) {
		return string(raw), EncodingUTF8, nil
	}

	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
	if err != nil {
		return "", "", apperrors.NewIngestionError("input is neither UTF-8 nor Latin-1", err)
	}
	return string(decoded), EncodingLatin1, nil
}

// IsXLSX reports whether the payload looks like an Excel workbook
func IsXLSX(name string, raw []byte) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx") || bytes.HasPrefix(raw, xlsxMagic)
}

// ReadTable parses delimited text into a raw table. Short rows are padded
// and long rows truncated to the header width, empty cells become NULL and
// rows with no value at all are dropped. The number of dropped rows is returned.
func ReadTable(text string, delimiter rune) (*domain.Table, int, error) {
	if strings.TrimSpace(text) == "" {
		return nil, 0, apperrors.NewIngestionError("input is empty", nil)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, apperrors.NewIngestionError("table could not be parsed as delimited text", err).
				WithContext("delimiter", string(delimiter))
		}
		records = append(records, rec)
	}

	return buildTable(records, func(_, _ int, v string) domain.Cell {
		return domain.TextCell(v)
	})
}

// ReadXLSX parses the first sheet of a workbook. Numeric cells keep their
// numeric type so locale parsing does not reinterpret the decimal point.
func ReadXLSX(raw []byte) (*domain.Table, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, apperrors.NewIngestionError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, apperrors.NewIngestionError("workbook has no sheets", nil)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, apperrors.NewIngestionError("failed to read sheet", err).WithContext("sheet", sheet)
	}

	return buildTable(rows, func(r, c int, v string) domain.Cell {
		axis, err := excelize.CoordinatesToCellName(c+1, r+1)
		if err != nil {
			return domain.TextCell(v)
		}
		typ, err := f.GetCellType(sheet, axis)
		if err == nil && (typ == excelize.CellTypeNumber || typ == excelize.CellTypeUnset) {
			if n, perr := strconv.ParseFloat(strings.TrimSpace(v), 64); perr == nil {
				return domain.NumberCell(n)
			}
		}
		return domain.TextCell(v)
	})
}

// buildTable turns string records into a table; the first record is the header
func buildTable(records [][]string, cell func(row, col int, v string) domain.Cell) (*domain.Table, int, error) {
	if len(records) == 0 {
		return nil, 0, apperrors.NewIngestionError("table has no header row", nil)
	}

	header := records[0]
	blank := true
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil, 0, apperrors.NewIngestionError("table has no header row", nil)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		columns[i] = h
	}

	table := &domain.Table{Columns: dedupeColumns(columns)}
	dropped := 0

	for r := 1; r < len(records); r++ {
		rec := records[r]
		row := make([]domain.Cell, len(columns))
		empty := true
		for c := range columns {
			if c >= len(rec) || rec[c] == "" {
				row[c] = domain.NullCell()
				continue
			}
			row[c] = cell(r, c, rec[c])
			empty = false
		}
		if empty {
			dropped++
			continue
		}
		table.Rows = append(table.Rows, row)
	}

	return table, dropped, nil
}

// dedupeColumns suffixes repeated names with .1, .2, ... keeping the first as is
func dedupeColumns(columns []string) []string {
	seen := make(map[string]int, len(columns))
	taken := make(map[string]bool, len(columns))
	for _, c := range columns {
		taken[c] = true
	}

	out := make([]string, len(columns))
	for i, c := range columns {
		n, dup := seen[c]
		if !dup {
			seen[c] = 1
			out[i] = c
			continue
		}
		name := fmt.Sprintf("%s.%d", c, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", c, n)
		}
		seen[c] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}
