package analytics

import (
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// StrategicOptions size the strategic sections. Zero values use the defaults.
type StrategicOptions struct {
	Threshold       float64
	ChartTopN       int
	PriorityGroups  int
	PriorityTargets int
	Opportunities   int
}

// Defaults for StrategicOptions
const (
	DefaultChartTopN       = 15
	DefaultPriorityGroups  = 10
	DefaultPriorityTargets = 20
	DefaultOpportunities   = 20
	breakdownTopN          = 3
)

func (o StrategicOptions) withDefaults() StrategicOptions {
	if !(o.Threshold > 0) {
		o.Threshold = DefaultParetoThreshold
	}
	if o.ChartTopN <= 0 {
		o.ChartTopN = DefaultChartTopN
	}
	if o.PriorityGroups <= 0 {
		o.PriorityGroups = DefaultPriorityGroups
	}
	if o.PriorityTargets <= 0 {
		o.PriorityTargets = DefaultPriorityTargets
	}
	if o.Opportunities <= 0 {
		o.Opportunities = DefaultOpportunities
	}
	return o
}

// Strategic computes the mines Pareto, holdings analysis and opportunity gap
func Strategic(records []domain.Record, opts StrategicOptions) domain.StrategicAnalysis {
	opts = opts.withDefaults()
	return domain.StrategicAnalysis{
		Mines:         MinesPareto(records, opts.Threshold),
		Groups:        GroupAnalysis(records, opts),
		Opportunities: Opportunities(records, opts.Opportunities),
	}
}

// MinesPareto reports the individual mines that make up the Pareto set by royalty
func MinesPareto(records []domain.Record, threshold float64) domain.MinesPareto {
	p, idx := pareto(records, ParetoOptions{Value: domain.ValueRoyalty, Threshold: threshold})

	set := make([]domain.Record, len(idx))
	for i, j := range idx {
		set[i] = records[j]
	}
	mapped := Mapped(set)

	mp := domain.MinesPareto{
		Pareto:         p,
		TotalMines:     len(records),
		ParetoMines:    len(set),
		ParetoRoyalty:  p.ValueSum(),
		MappedInPareto: len(mapped),
		AnnualMapped:   sumAnnual(mapped),
		Tiers:          TierDistribution(set, Tiers),
	}
	mp.ParetoMinesShare = percent(float64(mp.ParetoMines), float64(mp.TotalMines))
	mp.MappedShare = percent(float64(mp.MappedInPareto), float64(mp.ParetoMines))
	mp.Gap = mp.ParetoMines - mp.MappedInPareto
	mp.CaptureRate = percent(mp.AnnualMapped, mp.ParetoRoyalty)

	return mp
}

// GroupAnalysis reports royalty concentration across real holdings
func GroupAnalysis(records []domain.Record, opts StrategicOptions) domain.GroupAnalysis {
	opts = opts.withDefaults()

	grouped := WithGroup(records)
	p := Pareto(grouped, ParetoOptions{Value: domain.ValueRoyalty, Group: domain.GroupByHolding, Threshold: opts.Threshold})

	byGroup := make(map[string][]domain.Record)
	for _, r := range grouped {
		byGroup[r.GroupID] = append(byGroup[r.GroupID], r)
	}
	groupRoyalty := sumRoyalty(grouped)

	ga := domain.GroupAnalysis{
		Pareto:          p,
		Chart:           []domain.GroupBreakdown{},
		ParetoGroups:    len(p.Rows),
		ParetoRoyalty:   p.ValueSum(),
		TopSubstances:   []domain.KeyValue{},
		TopStates:       []domain.KeyValue{},
		PriorityTargets: []domain.ScoredRecord{},
	}

	for i, row := range p.Rows {
		if i >= opts.ChartTopN {
			break
		}
		members := byGroup[row.Key]
		mapped := Mapped(members)
		ga.Chart = append(ga.Chart, domain.GroupBreakdown{
			Group:         row.Key,
			Mines:         len(members),
			Royalty:       row.Value,
			ShareOfTotal:  percent(row.Value, groupRoyalty),
			Mapped:        len(mapped),
			MappedShare:   percent(float64(len(mapped)), float64(len(members))),
			MonthlyValue:  sumMonthly(mapped),
			AnnualValue:   sumAnnual(mapped),
			CumulativePct: row.CumulativeShare,
		})
	}

	var top []domain.Record
	for _, row := range p.Rows {
		top = append(top, byGroup[row.Key]...)
	}
	ga.ParetoMines = len(top)
	topRoyalty := sumRoyalty(top)

	ga.TopSubstances = topByValue(sumBy(top, func(r domain.Record) string { return r.Substance }, royaltyOf), breakdownTopN, topRoyalty)
	ga.TopStates = topByCount(sumBy(top, func(r domain.Record) string { return r.State }, royaltyOf), breakdownTopN, topRoyalty)

	gap := Unmapped(top)
	ga.GroupsWithGap = distinct(gap, realGroup)
	ga.GapRoyalty = sumRoyalty(gap)
	ga.GapMines = len(gap)

	var priority []domain.Record
	for i, row := range p.Rows {
		if i >= opts.PriorityGroups {
			break
		}
		priority = append(priority, byGroup[row.Key]...)
	}
	ga.PriorityTargets = RankUnmapped(priority, opts.PriorityTargets)

	return ga
}

// Opportunities describes the unmapped gap and ranks its top n records by score
func Opportunities(records []domain.Record, n int) domain.Opportunities {
	if n <= 0 {
		n = DefaultOpportunities
	}

	gap := Unmapped(records)
	op := domain.Opportunities{
		UnmappedCount: len(gap),
		GapRoyalty:    sumRoyalty(gap),
		Groups:        distinct(gap, realGroup),
		TopStates:     []domain.KeyValue{},
		TopGroups:     []domain.KeyValue{},
		Ranked:        TopN(gap, n),
	}

	for i := range gap {
		if op.Largest == nil || gap[i].RoyaltyTotal > op.Largest.RoyaltyTotal {
			largest := gap[i]
			op.Largest = &largest
		}
	}

	priority := selectRecords(gap, func(r domain.Record) bool {
		t := NormalizeTier(r.StrategyTier)
		return t == TierTEC01 || t == TierTEC02
	})
	op.PriorityCount = len(priority)
	op.PriorityRoyalty = sumRoyalty(priority)
	op.PriorityShare = percent(op.PriorityRoyalty, op.GapRoyalty)

	op.TopStates = topByValue(sumBy(gap, func(r domain.Record) string { return r.State }, royaltyOf), breakdownTopN, op.GapRoyalty)
	op.TopGroups = topByValue(sumBy(gap, realGroup, royaltyOf), breakdownTopN, op.GapRoyalty)

	return op
}
