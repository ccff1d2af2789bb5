package analytics

import (
	"fmt"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// mine builds a record with the given key, royalty and options applied
func mine(key string, royalty float64, opts ...func(*domain.Record)) domain.Record {
	r := domain.Record{PrimaryKey: key, RoyaltyTotal: royalty}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func tier(t string) func(*domain.Record)  { return func(r *domain.Record) { r.StrategyTier = t } }
func group(g string) func(*domain.Record) { return func(r *domain.Record) { r.GroupID = g } }
func state(s string) func(*domain.Record) { return func(r *domain.Record) { r.State = s } }
func substance(s string) func(*domain.Record) {
	return func(r *domain.Record) { r.Substance = s }
}

// mapped marks the record as engaged with the given monthly value
func mapped(monthly float64) func(*domain.Record) {
	return func(r *domain.Record) {
		m := monthly
		r.FirstScope = "Sim"
		r.IsMapped = true
		r.MonthlyValueMapped = &m
		r.AnnualValueMapped = monthly * 12
	}
}

// numbered assigns sequential rows and default keys
func numbered(records []domain.Record) []domain.Record {
	out := make([]domain.Record, len(records))
	for i, r := range records {
		r.Row = i
		if r.PrimaryKey == "" {
			r.PrimaryKey = fmt.Sprintf("M%d", i+1)
		}
		out[i] = r
	}
	return out
}

func keys(records []domain.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.PrimaryKey
	}
	return out
}
