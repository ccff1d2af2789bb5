package analytics

import (
	"math"

	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// DefaultSimulationTopN bounds the unmapped sample behind the average ticket
const DefaultSimulationTopN = 50

// ErrInvalidCaptureRate is returned for negative or non-finite capture rates
var ErrInvalidCaptureRate = apperrors.NewAppValidationError("capture rate must be a finite, non-negative percentage")

// ValidCaptureRate reports whether p can drive a simulation. Rates above 100% are valid.
func ValidCaptureRate(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}

// Simulate projects the revenue captured at rate p over records, sampling
// the top 50 unmapped records for the average ticket
func Simulate(records []domain.Record, p float64) (domain.SimulationResult, error) {
	return SimulateTop(records, p, DefaultSimulationTopN)
}

// SimulateTop is Simulate with a configurable sample size
func SimulateTop(records []domain.Record, p float64, n int) (domain.SimulationResult, error) {
	if !ValidCaptureRate(p) {
		return domain.SimulationResult{}, ErrInvalidCaptureRate
	}
	if n <= 0 {
		n = DefaultSimulationTopN
	}

	res := domain.SimulationResult{
		CaptureRate: p,
		BaseRecords: len(records),
		BaseRoyalty: sumRoyalty(records),
		Top:         []domain.SimulatedOpportunity{},
	}
	res.ProjectedAnnual = res.BaseRoyalty * p / 100
	res.ProjectedMonthly = res.ProjectedAnnual / MonthsPerYear

	unmapped := Unmapped(records)
	res.UnmappedCount = len(unmapped)

	top := TopN(unmapped, n)
	res.TicketSample = len(top)
	for _, s := range top {
		annual := s.RoyaltyTotal * p / 100
		res.TicketRoyalty += s.RoyaltyTotal
		res.TotalPotential += annual
		res.Top = append(res.Top, domain.SimulatedOpportunity{
			ScoredRecord:     s,
			AnnualPotential:  annual,
			MonthlyPotential: annual / MonthsPerYear,
		})
	}
	if res.TicketSample > 0 {
		res.AvgTicket = res.TicketRoyalty * p / 100 / float64(res.TicketSample)
	}

	return res, nil
}

// MonthsPerYear converts annual projections to monthly ones
const MonthsPerYear = 12

// DefaultMinTEC01Sample is the smallest mapped TEC01 sample whose value rate is reported as reliable
const DefaultMinTEC01Sample = 5

// SimulationReference contrasts the filtered base with the full market.
// minTEC01 <= 0 uses DefaultMinTEC01Sample.
func SimulationReference(total, filtered []domain.Record, minTEC01 int) domain.SimulationReference {
	if minTEC01 <= 0 {
		minTEC01 = DefaultMinTEC01Sample
	}

	mapped := Mapped(filtered)
	mappedRoyalty := sumRoyalty(mapped)

	ref := domain.SimulationReference{
		Mines:        len(filtered),
		MarketShare:  percent(float64(len(filtered)), float64(len(total))),
		Royalty:      sumRoyalty(filtered),
		Tiers:        TierDistribution(filtered, Tiers[:3]),
		Mapped:       len(mapped),
		MappedShare:  percent(float64(len(mapped)), float64(len(filtered))),
		AnnualMapped: sumAnnual(mapped),
	}
	ref.RoyaltyShare = percent(ref.Royalty, sumRoyalty(total))
	ref.AvgAnnualMapped = ratio(ref.AnnualMapped, len(mapped))
	ref.ValueRate = percent(ref.AnnualMapped, mappedRoyalty)

	tec01 := selectRecords(mapped, func(r domain.Record) bool { return NormalizeTier(r.StrategyTier) == TierTEC01 })
	ref.TEC01Mapped = len(tec01)
	ref.TEC01Rate = percent(sumAnnual(tec01), sumRoyalty(tec01))
	ref.TEC01RateReliable = len(tec01) >= minTEC01

	return ref
}
