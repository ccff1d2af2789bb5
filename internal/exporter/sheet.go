package exporter

import (
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/dataprocessing"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// Columns appended to the simulation export
const (
	ColumnTierWeight       = "peso_tec"
	ColumnPriorityScore    = "score_prioridade"
	ColumnAnnualPotential  = "potencial_anual"
	ColumnMonthlyPotential = "potencial_mensal"
)

// SimulationColumns are appended after the record columns in simulation exports
var SimulationColumns = []string{ColumnTierWeight, ColumnPriorityScore, ColumnAnnualPotential, ColumnMonthlyPotential}

// Sheet is a header plus typed rows, independent of the output format
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]domain.Cell
}

// RecordsSheet lays out records with every cleaned column followed by the
// derived columns. Cells come from the record's row in table.
func RecordsSheet(table *domain.Table, records []domain.Record) Sheet {
	headers := recordHeaders(table)
	rows := make([][]domain.Cell, len(records))
	for i, r := range records {
		rows[i] = append(tableCells(table, r), dataprocessing.DerivedCells(r)...)
	}
	return Sheet{Name: "cfem_crm", Headers: headers, Rows: rows}
}

// SimulationSheet lays out the ranked simulation sample with its weight,
// score and projected potential
func SimulationSheet(table *domain.Table, result domain.SimulationResult) Sheet {
	headers := append(recordHeaders(table), SimulationColumns...)
	rows := make([][]domain.Cell, len(result.Top))
	for i, s := range result.Top {
		row := append(tableCells(table, s.Record), dataprocessing.DerivedCells(s.Record)...)
		rows[i] = append(row,
			domain.IntCell(int64(s.TierWeight)),
			domain.NumberCell(s.Score),
			domain.NumberCell(s.AnnualPotential),
			domain.NumberCell(s.MonthlyPotential),
		)
	}
	return Sheet{Name: "simulacao", Headers: headers, Rows: rows}
}

func recordHeaders(table *domain.Table) []string {
	var headers []string
	if table != nil {
		headers = append(headers, table.Columns...)
	}
	return append(headers, dataprocessing.DerivedColumnNames...)
}

// tableCells copies the cleaned cells of a record; rows outside the table come back as NULLs
func tableCells(table *domain.Table, r domain.Record) []domain.Cell {
	if table == nil {
		return nil
	}
	cells := make([]domain.Cell, len(table.Columns))
	if r.Row < 0 || r.Row >= len(table.Rows) {
		return cells
	}
	copy(cells, table.Rows[r.Row])
	return cells
}
