package analytics

import (
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// OverviewTopN is the size of the overview breakdowns
const OverviewTopN = 5

// Overview computes the headline KPIs of a record set. Sections whose
// columns are missing from schema stay at zero.
func Overview(records []domain.Record, schema domain.Schema) domain.Overview {
	ov := domain.Overview{
		TopGroups:        []domain.KeyValue{},
		TopSubstances:    []domain.KeyValue{},
		TopStates:        []domain.KeyValue{},
		CompaniesPerTier: []domain.TierCount{},
	}

	// Market
	ov.TotalMines = len(records)
	if schema.Has(domain.FieldPrimaryKey) {
		ov.TotalMines = distinct(records, func(r domain.Record) string { return r.PrimaryKey })
	}
	if schema.Has(domain.FieldRoyalty) {
		ov.RoyaltyTotal = sumRoyalty(records)
	}
	ov.AvgTicket = ratio(ov.RoyaltyTotal, ov.TotalMines)

	// Market structure
	ov.MinesWithGroup = ov.TotalMines
	if schema.Has(domain.FieldGroup) {
		grouped := WithGroup(records)
		ov.MinesWithGroup = len(grouped)
		ov.GroupCount = distinct(grouped, realGroup)
		ov.GroupRoyalty = sumRoyalty(grouped)
		ov.AvgGroupTicket = ratio(ov.GroupRoyalty, ov.GroupCount)
		ov.TopGroups = topByValue(sumBy(grouped, realGroup, royaltyOf), OverviewTopN, ov.GroupRoyalty)
	}
	if schema.Has(domain.FieldSubstance) {
		ov.TopSubstances = topByValue(sumBy(records, func(r domain.Record) string { return r.Substance }, royaltyOf), OverviewTopN, ov.RoyaltyTotal)
	}
	if schema.Has(domain.FieldState) {
		ov.TopStates = topByValue(sumBy(records, func(r domain.Record) string { return r.State }, royaltyOf), OverviewTopN, ov.RoyaltyTotal)
	}

	// Commercial mapping
	if !schema.Has(domain.FieldFirstScope) {
		return ov
	}
	mapped := Mapped(records)
	ov.MappedCount = len(mapped)
	ov.MappedShareOfTotal = percent(float64(ov.MappedCount), float64(ov.TotalMines))
	ov.MappedShareOfGrouped = percent(float64(ov.MappedCount), float64(ov.MinesWithGroup))
	ov.MonthlyMappedValue = sumMonthly(mapped)
	ov.AnnualMappedValue = sumAnnual(mapped)

	mappedRoyalty := sumRoyalty(mapped)
	ov.ValueRoyaltyIndex = percent(ov.AnnualMappedValue, mappedRoyalty)
	ov.MappedAvgRoyalty = ratio(mappedRoyalty, len(mapped))
	ov.MappedAvgAnnualValue = ratio(ov.AnnualMappedValue, len(mapped))

	if schema.HasAll(domain.FieldTier, domain.FieldGroup) {
		for _, tier := range Tiers {
			inTier := selectRecords(mapped, func(r domain.Record) bool { return NormalizeTier(r.StrategyTier) == tier })
			if n := distinct(inTier, realGroup); n > 0 {
				ov.CompaniesPerTier = append(ov.CompaniesPerTier, domain.TierCount{Tier: tier, Count: n})
			}
		}
	}

	return ov
}
