package analytics

import (
	"math"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// BuildFilterOptions enumerates the choices available for each filter
// dimension. Values are distinct, non-empty and sorted with Brazilian
// Portuguese collation; holding options leave out the sentinel groups.
// Dimensions whose column is missing yield an empty list.
func BuildFilterOptions(records []domain.Record, schema domain.Schema) domain.FilterSchema {
	coll := collate.New(language.BrazilianPortuguese)

	options := func(field domain.Field, value func(domain.Record) string) []string {
		if !schema.Has(field) {
			return []string{}
		}
		seen := make(map[string]struct{})
		out := make([]string, 0)
		for _, r := range records {
			v := value(r)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		coll.SortStrings(out)
		return out
	}

	fs := domain.FilterSchema{
		States:        options(domain.FieldState, func(r domain.Record) string { return r.State }),
		Tiers:         options(domain.FieldTier, func(r domain.Record) string { return r.StrategyTier }),
		Groups:        options(domain.FieldGroup, realGroup),
		Substances:    options(domain.FieldSubstance, func(r domain.Record) string { return r.Substance }),
		Outsourcing:   options(domain.FieldOutsourcing, func(r domain.Record) string { return r.OutsourcesMining }),
		Statuses:      []domain.MappingStatusFilter{domain.StatusAll, domain.StatusMapped, domain.StatusUnmapped},
		GroupPresence: []domain.GroupPresence{domain.GroupPresenceAny, domain.GroupPresenceWith, domain.GroupPresenceWithout},
		SizeBands:     append([]domain.SizeBand(nil), domain.SizeBands...),
	}

	if schema.Has(domain.FieldRoyalty) && len(records) > 0 {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, r := range records {
			lo = math.Min(lo, r.RoyaltyTotal)
			hi = math.Max(hi, r.RoyaltyTotal)
		}
		fs.Royalty = &domain.Range{Min: lo, Max: hi}
		fs.Quartiles = RoyaltyQuartiles(records)
	}

	return fs
}
