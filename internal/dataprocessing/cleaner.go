package dataprocessing

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// ExcludedColumns are obsolete duplicates removed during cleaning
var ExcludedColumns = []string{"empresa_cpf_cnpj", "cfem_(porte)", "cfem (porte)"}

// DecimalColumns hold Brazilian-formatted amounts
var DecimalColumns = []string{
	domain.ColumnRoyaltyTotal,
	domain.ColumnVolumeTotal,
	domain.ColumnValue,
	domain.ColumnMonthlyValue,
}

// IntegerColumns are coerced to non-negative integers
var IntegerColumns = []string{domain.ColumnDuration, domain.ColumnTotalScopes}

const checkColumnPrefix = "check"

// NormalizeColumnName applies NFC, trims, lowercases and replaces spaces with underscores
func NormalizeColumnName(name string) string {
	name = norm.NFC.String(name)
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}

// CleanResult is a cleaned table plus the names of the columns removed from it
type CleanResult struct {
	Table          *domain.Table
	DroppedColumns []string
}

// Clean normalizes a raw table without touching the input. Running it again
// on its own output changes nothing.
func Clean(raw *domain.Table) CleanResult {
	if raw == nil {
		return CleanResult{Table: &domain.Table{}}
	}

	names := make([]string, len(raw.Columns))
	for i, c := range raw.Columns {
		names[i] = NormalizeColumnName(c)
	}
	names = dedupeColumns(names)

	keep := make([]int, 0, len(names))
	var dropped []string
	for i, name := range names {
		if isDroppedColumn(name) {
			dropped = append(dropped, name)
			continue
		}
		keep = append(keep, i)
	}

	out := &domain.Table{
		Columns: make([]string, len(keep)),
		Rows:    make([][]domain.Cell, len(raw.Rows)),
	}
	kinds := make([]columnKind, len(keep))
	for j, i := range keep {
		out.Columns[j] = names[i]
		kinds[j] = kindOf(names[i])
	}

	for r, src := range raw.Rows {
		row := make([]domain.Cell, len(keep))
		for j, i := range keep {
			var cell domain.Cell
			if i < len(src) {
				cell = src[i]
			}
			row[j] = cleanCell(cell, kinds[j])
		}
		out.Rows[r] = row
	}

	return CleanResult{Table: out, DroppedColumns: dropped}
}

func isDroppedColumn(name string) bool {
	if strings.HasPrefix(name, checkColumnPrefix) {
		return true
	}
	for _, ex := range ExcludedColumns {
		if name == ex {
			return true
		}
	}
	return false
}

type columnKind uint8

const (
	kindText columnKind = iota
	kindTaxID
	kindDecimal
	kindInteger
)

func kindOf(column string) columnKind {
	if column == domain.ColumnTaxID {
		return kindTaxID
	}
	for _, c := range DecimalColumns {
		if c == column {
			return kindDecimal
		}
	}
	for _, c := range IntegerColumns {
		if c == column {
			return kindInteger
		}
	}
	return kindText
}

// cleanCell applies the missing-token rule, the column parser and whitespace trimming
func cleanCell(cell domain.Cell, kind columnKind) domain.Cell {
	if cell.Kind == domain.CellText && IsMissingToken(cell.Text) {
		cell = domain.NullCell()
	}

	switch kind {
	case kindTaxID:
		if cell.IsNull() {
			return cell
		}
		if id := ParseTaxID(cell); id != "" {
			return domain.TextCell(id)
		}
		return domain.NullCell()
	case kindDecimal:
		if f, ok := ParseDecimalBR(cell); ok {
			return domain.NumberCell(f)
		}
		return domain.NullCell()
	case kindInteger:
		return domain.IntCell(ParseIntCoerce(cell))
	}

	if cell.Kind == domain.CellText {
		trimmed := strings.TrimSpace(cell.Text)
		if trimmed == "" {
			return domain.NullCell()
		}
		return domain.TextCell(trimmed)
	}
	return cell
}
