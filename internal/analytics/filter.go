package analytics

import (
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// predicate keeps a record when it returns true
type predicate func(domain.Record) bool

// ApplyFilters returns the records that satisfy every active dimension of
// sel. Dimensions combine with AND; values inside a dimension combine with
// OR, and an empty dimension does not restrict. A dimension whose source
// column is missing from schema is ignored. records is never modified.
func ApplyFilters(records []domain.Record, schema domain.Schema, sel domain.FilterSelection) []domain.Record {
	preds := buildPredicates(records, schema, sel)

	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		keep := true
		for _, p := range preds {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// Filter applies sel and reports how many records matched
func Filter(records []domain.Record, schema domain.Schema, sel domain.FilterSelection) domain.FilteredView {
	matched := ApplyFilters(records, schema, sel)
	return domain.FilteredView{
		Records:       matched,
		Total:         len(records),
		Matched:       len(matched),
		FiltersActive: sel.Active(),
	}
}

func buildPredicates(records []domain.Record, schema domain.Schema, sel domain.FilterSelection) []predicate {
	var preds []predicate

	if p := memberOf(sel.States, schema.Has(domain.FieldState), func(r domain.Record) string { return r.State }); p != nil {
		preds = append(preds, p)
	}
	if p := memberOf(sel.Tiers, schema.Has(domain.FieldTier), func(r domain.Record) string { return r.StrategyTier }); p != nil {
		preds = append(preds, p)
	}
	if p := memberOf(sel.Substances, schema.Has(domain.FieldSubstance), func(r domain.Record) string { return r.Substance }); p != nil {
		preds = append(preds, p)
	}
	if p := memberOf(sel.Outsourcing, schema.Has(domain.FieldOutsourcing), func(r domain.Record) string { return r.OutsourcesMining }); p != nil {
		preds = append(preds, p)
	}

	// Sentinel and ungrouped rows always survive the holding filter
	if inGroup := memberOf(sel.Groups, schema.Has(domain.FieldGroup), func(r domain.Record) string { return r.GroupID }); inGroup != nil {
		preds = append(preds, func(r domain.Record) bool {
			return IsSentinelGroup(r.GroupID) || inGroup(r)
		})
	}

	if schema.Has(domain.FieldGroup) {
		switch sel.GroupPresence {
		case domain.GroupPresenceWith:
			preds = append(preds, HasGroup)
		case domain.GroupPresenceWithout:
			preds = append(preds, func(r domain.Record) bool { return !HasGroup(r) })
		}
	}

	if schema.Has(domain.FieldFirstScope) {
		switch sel.Status {
		case domain.StatusMapped:
			preds = append(preds, func(r domain.Record) bool { return r.IsMapped })
		case domain.StatusUnmapped:
			preds = append(preds, func(r domain.Record) bool { return !r.IsMapped })
		}
	}

	if schema.Has(domain.FieldRoyalty) {
		if sel.Royalty != nil {
			rng := *sel.Royalty
			preds = append(preds, func(r domain.Record) bool { return rng.Contains(r.RoyaltyTotal) })
		}

		if len(sel.SizeBands) > 0 {
			quartiles := RoyaltyQuartiles(records)
			bands := make(map[domain.SizeBand]bool, len(sel.SizeBands))
			for _, b := range sel.SizeBands {
				bands[b] = true
			}
			preds = append(preds, func(r domain.Record) bool {
				return bands[SizeBandOf(r.RoyaltyTotal, quartiles)]
			})
		}
	}

	return preds
}

// memberOf builds a set-membership predicate, or nil when the dimension does not restrict
func memberOf(values []string, present bool, field func(domain.Record) string) predicate {
	if len(values) == 0 || !present {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return func(r domain.Record) bool {
		return set[field(r)]
	}
}
