package dataprocessing

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// unmappedScope is the literal first-scope answer meaning "no engagement"
var unmappedScope = norm.NFC.String("NÃO")

// MonthsPerYear annualizes the mapped monthly value
const MonthsPerYear = 12

// DerivedColumnNames are appended to record exports after the cleaned columns
var DerivedColumnNames = []string{domain.ColumnAnnualMapped, domain.ColumnMappingStatus}

// IsMappedScope reports whether a first-scope value denotes a commercial engagement
func IsMappedScope(scope string) bool {
	s := strings.TrimSpace(norm.NFC.String(scope))
	if s == "" {
		return false
	}
	return !strings.EqualFold(s, unmappedScope)
}

// Derive materializes typed records from a cleaned table and reports which
// logical fields the table provided. Absent columns fall back to zero values.
func Derive(table *domain.Table) ([]domain.Record, domain.Schema) {
	schema := make(domain.Schema, len(domain.FieldColumns))
	index := make(map[domain.Field]int, len(domain.FieldColumns))
	for field, column := range domain.FieldColumns {
		i := -1
		if table != nil {
			i = table.Index(column)
		}
		index[field] = i
		schema[field] = i >= 0
	}

	if table == nil {
		return nil, schema
	}

	records := make([]domain.Record, len(table.Rows))
	for r, row := range table.Rows {
		get := func(f domain.Field) domain.Cell {
			if i := index[f]; i >= 0 && i < len(row) {
				return row[i]
			}
			return domain.NullCell()
		}
		text := func(f domain.Field) string {
			return strings.TrimSpace(get(f).String())
		}

		rec := domain.Record{
			Row:              r,
			PrimaryKey:       text(domain.FieldPrimaryKey),
			TaxID:            text(domain.FieldTaxID),
			Company:          text(domain.FieldCompany),
			GroupID:          text(domain.FieldGroup),
			State:            text(domain.FieldState),
			Municipality:     text(domain.FieldMunicipality),
			Substance:        text(domain.FieldSubstance),
			RoyaltyTotal:     nonNegative(get(domain.FieldRoyalty)),
			VolumeTotal:      nonNegative(get(domain.FieldVolume)),
			StrategyTier:     text(domain.FieldTier),
			FirstScope:       text(domain.FieldFirstScope),
			OutsourcesMining: text(domain.FieldOutsourcing),
		}

		if v, ok := get(domain.FieldMonthlyValue).Float(); ok {
			monthly := v
			rec.MonthlyValueMapped = &monthly
		}

		rec.IsMapped = IsMappedScope(rec.FirstScope)
		if rec.IsMapped && rec.MonthlyValueMapped != nil {
			rec.AnnualValueMapped = *rec.MonthlyValueMapped * MonthsPerYear
		}

		records[r] = rec
	}

	return records, schema
}

func nonNegative(c domain.Cell) float64 {
	v, ok := c.Float()
	if !ok || v < 0 {
		return 0
	}
	return v
}

// DerivedCells returns the export cells for the derived columns of a record
func DerivedCells(r domain.Record) []domain.Cell {
	return []domain.Cell{
		domain.NumberCell(r.AnnualValueMapped),
		domain.TextCell(r.MappingStatus()),
	}
}
