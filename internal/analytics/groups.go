package analytics

import (
	"sort"
	"strings"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// sentinelGroups mark operations without a real holding
var sentinelGroups = []string{"NA", "FORA"}

// IsSentinelGroup reports whether g means "no holding": empty, NA or FORA in any case
func IsSentinelGroup(g string) bool {
	g = strings.TrimSpace(g)
	if g == "" {
		return true
	}
	for _, s := range sentinelGroups {
		if strings.EqualFold(g, s) {
			return true
		}
	}
	return false
}

// HasGroup reports whether the record belongs to a real holding
func HasGroup(r domain.Record) bool {
	return !IsSentinelGroup(r.GroupID)
}

// WithGroup returns the records that belong to a real holding
func WithGroup(records []domain.Record) []domain.Record {
	return selectRecords(records, HasGroup)
}

// Mapped returns the records with a commercial engagement
func Mapped(records []domain.Record) []domain.Record {
	return selectRecords(records, func(r domain.Record) bool { return r.IsMapped })
}

// Unmapped returns the records without a commercial engagement
func Unmapped(records []domain.Record) []domain.Record {
	return selectRecords(records, func(r domain.Record) bool { return !r.IsMapped })
}

func selectRecords(records []domain.Record, keep func(domain.Record) bool) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sumRoyalty(records []domain.Record) float64 {
	var sum float64
	for _, r := range records {
		sum += r.RoyaltyTotal
	}
	return sum
}

func sumAnnual(records []domain.Record) float64 {
	var sum float64
	for _, r := range records {
		sum += r.AnnualValueMapped
	}
	return sum
}

func sumMonthly(records []domain.Record) float64 {
	var sum float64
	for _, r := range records {
		if r.MonthlyValueMapped != nil {
			sum += *r.MonthlyValueMapped
		}
	}
	return sum
}

func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// aggregate is the royalty total and record count of one key
type aggregate struct {
	key   string
	value float64
	count int
}

// sumBy groups records by key, skipping empty keys. Aggregates come back in
// ascending key order, which is the natural order for stable ranking.
func sumBy(records []domain.Record, key func(domain.Record) string, value func(domain.Record) float64) []aggregate {
	index := make(map[string]int)
	var aggs []aggregate
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(aggs)
			index[k] = i
			aggs = append(aggs, aggregate{key: k})
		}
		aggs[i].value += value(r)
		aggs[i].count++
	}
	sort.Slice(aggs, func(i, j int) bool { return aggs[i].key < aggs[j].key })
	return aggs
}

func royaltyOf(r domain.Record) float64 { return r.RoyaltyTotal }

// topByValue ranks aggregates by value, descending
func topByValue(aggs []aggregate, n int, total float64) []domain.KeyValue {
	ranked := append([]aggregate(nil), aggs...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].value > ranked[j].value })
	return toKeyValues(ranked, n, total)
}

// topByCount ranks aggregates by record count, descending
func topByCount(aggs []aggregate, n int, total float64) []domain.KeyValue {
	ranked := append([]aggregate(nil), aggs...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })
	return toKeyValues(ranked, n, total)
}

func toKeyValues(aggs []aggregate, n int, total float64) []domain.KeyValue {
	if n >= 0 && len(aggs) > n {
		aggs = aggs[:n]
	}
	out := make([]domain.KeyValue, len(aggs))
	for i, a := range aggs {
		out[i] = domain.KeyValue{Key: a.key, Value: a.value, Count: a.count, Share: percent(a.value, total)}
	}
	return out
}

// distinct counts the different non-empty keys
func distinct(records []domain.Record, key func(domain.Record) string) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if k := key(r); k != "" {
			seen[k] = struct{}{}
		}
	}
	return len(seen)
}

// realGroup returns the holding name, or "" for sentinel groups
func realGroup(r domain.Record) string {
	if IsSentinelGroup(r.GroupID) {
		return ""
	}
	return r.GroupID
}
