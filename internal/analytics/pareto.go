package analytics

import (
	"sort"
	"strconv"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// DefaultParetoThreshold is the cumulative share, in percent, that bounds the Pareto set
const DefaultParetoThreshold = 80.0

// ParetoOptions select the measure, optional grouping and cutoff
type ParetoOptions struct {
	Value     domain.ValueField
	Group     domain.GroupField
	Threshold float64
}

// ValidValueField reports whether f names a supported measure
func ValidValueField(f domain.ValueField) bool {
	switch f {
	case domain.ValueRoyalty, domain.ValueVolume, domain.ValueAnnualMapped:
		return true
	}
	return false
}

// ValidGroupField reports whether g names a supported grouping
func ValidGroupField(g domain.GroupField) bool {
	switch g {
	case domain.GroupNone, domain.GroupByHolding, domain.GroupByState,
		domain.GroupBySubstance, domain.GroupByMunicipality, domain.GroupByTier:
		return true
	}
	return false
}

// ValueOf returns the measure of a record. Unknown fields read the royalty.
func ValueOf(r domain.Record, f domain.ValueField) float64 {
	switch f {
	case domain.ValueVolume:
		return r.VolumeTotal
	case domain.ValueAnnualMapped:
		return r.AnnualValueMapped
	default:
		return r.RoyaltyTotal
	}
}

// GroupKey returns the grouping key of a record, "" when it has none.
// Sentinel holdings have no key.
func GroupKey(r domain.Record, g domain.GroupField) string {
	switch g {
	case domain.GroupByHolding:
		return realGroup(r)
	case domain.GroupByState:
		return r.State
	case domain.GroupBySubstance:
		return r.Substance
	case domain.GroupByMunicipality:
		return r.Municipality
	case domain.GroupByTier:
		return r.StrategyTier
	default:
		return ""
	}
}

// Pareto80 ranks records (or groups) by value and keeps the prefix whose
// cumulative share stays at or below 80%
func Pareto80(records []domain.Record, value domain.ValueField, group domain.GroupField) domain.ParetoResult {
	return Pareto(records, ParetoOptions{Value: value, Group: group, Threshold: DefaultParetoThreshold})
}

// Pareto ranks candidates by descending value with a stable sort, computes
// the cumulative share and keeps every row whose share is <= the threshold,
// stopping at the first row above it. A zero total yields no rows.
func Pareto(records []domain.Record, opts ParetoOptions) domain.ParetoResult {
	res, _ := pareto(records, opts)
	return res
}

type paretoCandidate struct {
	row    domain.ParetoRow
	source int
}

// pareto also returns, in individual mode, the positions in records of the kept rows
func pareto(records []domain.Record, opts ParetoOptions) (domain.ParetoResult, []int) {
	opts = normalizeParetoOptions(opts)

	res := domain.ParetoResult{
		Value:     opts.Value,
		Group:     opts.Group,
		Threshold: opts.Threshold,
		Rows:      []domain.ParetoRow{},
	}

	var candidates []paretoCandidate
	if opts.Group == domain.GroupNone {
		candidates = make([]paretoCandidate, len(records))
		for i, r := range records {
			key := r.PrimaryKey
			if key == "" {
				key = strconv.Itoa(r.Row)
			}
			candidates[i] = paretoCandidate{
				row:    domain.ParetoRow{Key: key, Row: r.Row, Value: ValueOf(r, opts.Value), Count: 1},
				source: i,
			}
		}
	} else {
		aggs := sumBy(records,
			func(r domain.Record) string { return GroupKey(r, opts.Group) },
			func(r domain.Record) float64 { return ValueOf(r, opts.Value) })
		candidates = make([]paretoCandidate, len(aggs))
		for i, a := range aggs {
			candidates[i] = paretoCandidate{
				row:    domain.ParetoRow{Key: a.key, Row: -1, Value: a.value, Count: a.count},
				source: -1,
			}
		}
	}

	res.Candidates = len(candidates)
	for _, c := range candidates {
		res.Total += c.row.Value
	}
	if res.Total <= 0 {
		return res, []int{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].row.Value > candidates[j].row.Value
	})

	kept := []int{}
	var running float64
	for _, c := range candidates {
		running += c.row.Value
		c.row.CumulativeShare = running / res.Total * 100
		if c.row.CumulativeShare > opts.Threshold {
			break
		}
		res.Rows = append(res.Rows, c.row)
		if c.source >= 0 {
			kept = append(kept, c.source)
		}
	}

	return res, kept
}

func normalizeParetoOptions(opts ParetoOptions) ParetoOptions {
	if !ValidValueField(opts.Value) {
		opts.Value = domain.ValueRoyalty
	}
	if !ValidGroupField(opts.Group) {
		opts.Group = domain.GroupNone
	}
	if !(opts.Threshold > 0) {
		opts.Threshold = DefaultParetoThreshold
	}
	return opts
}
