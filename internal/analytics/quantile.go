package analytics

import (
	"math"
	"sort"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// Quantile returns the q-th quantile of values using linear interpolation
// between the closest ranks. values need not be sorted; NaN is returned for
// an empty input.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// RoyaltyQuartiles computes the size-band cut points over the positive
// royalties of records. It returns nil when no record has a positive royalty.
func RoyaltyQuartiles(records []domain.Record) *domain.Quartiles {
	values := make([]float64, 0, len(records))
	for _, r := range records {
		if r.RoyaltyTotal > 0 {
			values = append(values, r.RoyaltyTotal)
		}
	}
	if len(values) == 0 {
		return nil
	}

	sort.Float64s(values)
	return &domain.Quartiles{
		Q25: quantileSorted(values, 0.25),
		Q50: quantileSorted(values, 0.50),
		Q75: quantileSorted(values, 0.75),
	}
}

// SizeBandOf places a royalty in its quartile band. Without quartiles every
// record is small.
func SizeBandOf(royalty float64, q *domain.Quartiles) domain.SizeBand {
	switch {
	case q == nil || royalty <= q.Q25:
		return domain.SizeSmall
	case royalty <= q.Q50:
		return domain.SizeMediumLow
	case royalty <= q.Q75:
		return domain.SizeMediumHigh
	default:
		return domain.SizeLarge
	}
}
