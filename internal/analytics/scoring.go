package analytics

import (
	"sort"
	"strings"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// Strategy tier codes, highest priority first
const (
	TierTEC01 = "TEC01"
	TierTEC02 = "TEC02"
	TierTEC03 = "TEC03"
	TierTEC04 = "TEC04"
	TierTEC05 = "TEC05"
)

// Tiers lists every tier code in priority order
var Tiers = []string{TierTEC01, TierTEC02, TierTEC03, TierTEC04, TierTEC05}

var tierWeights = map[string]int{
	TierTEC01: 5,
	TierTEC02: 4,
	TierTEC03: 3,
	TierTEC04: 2,
	TierTEC05: 1,
}

// NormalizeTier trims and upper-cases a tier code
func NormalizeTier(tier string) string {
	return strings.ToUpper(strings.TrimSpace(tier))
}

// TierWeight maps TEC01..TEC05 to 5..1, case-insensitively. Missing or
// unknown tiers weigh 0.
func TierWeight(tier string) int {
	return tierWeights[NormalizeTier(tier)]
}

// Score is the priority score: royalty times tier weight
func Score(r domain.Record) float64 {
	return r.RoyaltyTotal * float64(TierWeight(r.StrategyTier))
}

// ScoreRecord attaches the tier weight and score to a record
func ScoreRecord(r domain.Record) domain.ScoredRecord {
	w := TierWeight(r.StrategyTier)
	return domain.ScoredRecord{
		Record:     r,
		TierWeight: w,
		Score:      r.RoyaltyTotal * float64(w),
	}
}

// TopN returns up to n records ranked by descending score. Ties keep their
// input order.
func TopN(records []domain.Record, n int) []domain.ScoredRecord {
	if n <= 0 || len(records) == 0 {
		return []domain.ScoredRecord{}
	}

	scored := make([]domain.ScoredRecord, len(records))
	for i, r := range records {
		scored[i] = ScoreRecord(r)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}

// RankUnmapped returns the top n unmapped records by score
func RankUnmapped(records []domain.Record, n int) []domain.ScoredRecord {
	return TopN(Unmapped(records), n)
}

// TierDistribution counts records per tier for the given codes, zeros included
func TierDistribution(records []domain.Record, tiers []string) []domain.TierCount {
	counts := make(map[string]int, len(tiers))
	for _, r := range records {
		counts[NormalizeTier(r.StrategyTier)]++
	}
	out := make([]domain.TierCount, len(tiers))
	for i, t := range tiers {
		out[i] = domain.TierCount{Tier: t, Count: counts[t]}
	}
	return out
}
