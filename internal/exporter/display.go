package exporter

import (
	"sort"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// DisplayColumn is one column of the detail table
type DisplayColumn struct {
	Source string `json:"source"`
	Label  string `json:"label"`
}

// DisplayColumns lists the detail table columns in display order
var DisplayColumns = []DisplayColumn{
	{domain.ColumnGroup, "Grupo"},
	{domain.ColumnCompany, "Empresa"},
	{domain.ColumnMunicipality, "município"},
	{domain.ColumnState, "uf"},
	{domain.ColumnSubstance, "Substância"},
	{domain.ColumnRoyaltyTotal, "CFEM 2024 (R$)"},
	{domain.ColumnVolumeTotal, "Volume (t)"},
	{domain.ColumnStrategyTier, "tec"},
	{domain.ColumnMappingStatus, "Mapeado?"},
	{domain.ColumnAnnualMapped, "Valor Anual (R$)"},
	{domain.ColumnFirstScope, "Escopo"},
	{domain.ColumnOutsourcing, "Terceiriza?"},
}

// DisplayTable is the formatted detail table of a record set
type DisplayTable struct {
	Columns []DisplayColumn `json:"columns"`
	Rows    [][]string      `json:"rows"`
}

// BuildDisplayTable selects the display columns present in table, formats
// amounts and volumes, and sorts rows by royalty, largest first. Derived
// columns are always present.
func BuildDisplayTable(table *domain.Table, records []domain.Record) DisplayTable {
	type column struct {
		DisplayColumn
		index int
	}

	var cols []column
	for _, c := range DisplayColumns {
		idx := -1
		if table != nil {
			idx = table.Index(c.Source)
		}
		if idx < 0 && !derivedColumn(c.Source) {
			continue
		}
		cols = append(cols, column{DisplayColumn: c, index: idx})
	}

	ordered := append([]domain.Record(nil), records...)
	if table != nil && table.Has(domain.ColumnRoyaltyTotal) {
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].RoyaltyTotal > ordered[j].RoyaltyTotal
		})
	}

	out := DisplayTable{
		Columns: make([]DisplayColumn, len(cols)),
		Rows:    make([][]string, len(ordered)),
	}
	for i, c := range cols {
		out.Columns[i] = c.DisplayColumn
	}

	for i, r := range ordered {
		cells := tableCells(table, r)
		row := make([]string, len(cols))
		for j, c := range cols {
			var cell domain.Cell
			if c.index >= 0 && c.index < len(cells) {
				cell = cells[c.index]
			}
			row[j] = displayValue(c.Source, cell, r)
		}
		out.Rows[i] = row
	}

	return out
}

func derivedColumn(source string) bool {
	return source == domain.ColumnMappingStatus || source == domain.ColumnAnnualMapped
}

func displayValue(source string, cell domain.Cell, r domain.Record) string {
	switch source {
	case domain.ColumnMappingStatus:
		return r.MappingStatus()
	case domain.ColumnAnnualMapped:
		return FormatCurrency(r.AnnualValueMapped)
	case domain.ColumnRoyaltyTotal:
		if v, ok := cell.Float(); ok {
			return FormatCurrency(v)
		}
		return zeroCurrency
	case domain.ColumnVolumeTotal:
		if v, ok := cell.Float(); ok {
			return FormatNumber(v, 2)
		}
		return "0"
	default:
		return cell.String()
	}
}
