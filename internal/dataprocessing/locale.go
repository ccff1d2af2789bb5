package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// Missing-value tokens exported by the spreadsheet tooling upstream
const (
	TokenNotAvailablePT = "#N/D"
	TokenNotAvailableEN = "#N/A"
)

// IsMissingToken reports whether s is one of the sentinel missing-value tokens
func IsMissingToken(s string) bool {
	s = strings.TrimSpace(s)
	return s == TokenNotAvailablePT || s == TokenNotAvailableEN
}

// ParseTaxID converts a CPF/CNPJ cell into a zero-padded 14-digit string.
// Scientific notation ("3.36E+13") and thousands separators are accepted.
// Null or blank cells yield "", and anything that cannot be coerced to an
// integer is returned as the trimmed literal.
func ParseTaxID(cell domain.Cell) string {
	switch cell.Kind {
	case domain.CellNull:
		return ""
	case domain.CellInteger:
		return formatTaxID(cell.Int)
	case domain.CellNumber:
		if n, ok := truncateToInt64(cell.Number); ok {
			return formatTaxID(n)
		}
		return cell.String()
	}

	raw := strings.TrimSpace(cell.Text)
	if raw == "" {
		return ""
	}

	digits := raw
	if !strings.ContainsAny(raw, "Ee") {
		digits = strings.NewReplacer(".", "", ",", "").Replace(raw)
	}

	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return raw
	}
	n, ok := truncateToInt64(f)
	if !ok {
		return raw
	}
	return formatTaxID(n)
}

func formatTaxID(n int64) string {
	return fmt.Sprintf("%014d", n)
}

// truncateToInt64 truncates toward zero, rejecting NaN, Inf and out-of-range values
func truncateToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return 0, false
	}
	return int64(t), true
}

// ParseDecimalBR converts a Brazilian-formatted decimal ("1.234,56") to a float.
// Numeric cells pass through. Missing tokens, blanks and unparseable text
// yield ok == false.
func ParseDecimalBR(cell domain.Cell) (float64, bool) {
	switch cell.Kind {
	case domain.CellNull:
		return 0, false
	case domain.CellNumber, domain.CellInteger:
		f, _ := cell.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}

	raw := strings.TrimSpace(cell.Text)
	if raw == "" || IsMissingToken(raw) {
		return 0, false
	}

	normalized := strings.ReplaceAll(raw, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseIntCoerce converts a cell to a non-negative integer. Fractions are
// truncated; negative, null and unparseable values become 0.
func ParseIntCoerce(cell domain.Cell) int64 {
	var f float64
	switch cell.Kind {
	case domain.CellInteger:
		if cell.Int < 0 {
			return 0
		}
		return cell.Int
	case domain.CellNumber:
		f = cell.Number
	case domain.CellText:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	n, ok := truncateToInt64(f)
	if !ok || n < 0 {
		return 0
	}
	return n
}
