package domain

// ValueField selects the measure a Pareto ranking sums
type ValueField string

const (
	ValueRoyalty      ValueField = "royalty_total"
	ValueVolume       ValueField = "volume_total"
	ValueAnnualMapped ValueField = "annual_value_mapped"
)

// GroupField selects an optional grouping dimension for Pareto
type GroupField string

const (
	GroupNone           GroupField = ""
	GroupByHolding      GroupField = "group_id"
	GroupByState        GroupField = "state"
	GroupBySubstance    GroupField = "substance"
	GroupByMunicipality GroupField = "municipality"
	GroupByTier         GroupField = "strategy_tier"
)

// ParetoRow is one ranked record or group
type ParetoRow struct {
	Key             string  `json:"key"`
	Row             int     `json:"row"`
	Value           float64 `json:"value"`
	CumulativeShare float64 `json:"cumulative_share"`
	Count           int     `json:"count"`
}

// ParetoResult is the ranked prefix whose cumulative share stays within the threshold
type ParetoResult struct {
	Value      ValueField  `json:"value_field"`
	Group      GroupField  `json:"group_field,omitempty"`
	Threshold  float64     `json:"threshold"`
	Total      float64     `json:"total"`
	Candidates int         `json:"candidates"`
	Rows       []ParetoRow `json:"rows"`
}

// Keys returns the row keys in rank order
func (p ParetoResult) Keys() []string {
	keys := make([]string, len(p.Rows))
	for i, r := range p.Rows {
		keys[i] = r.Key
	}
	return keys
}

// ValueSum returns the summed value of the retained rows
func (p ParetoResult) ValueSum() float64 {
	var sum float64
	for _, r := range p.Rows {
		sum += r.Value
	}
	return sum
}

// ScoredRecord pairs a record with its priority score
type ScoredRecord struct {
	Record
	TierWeight int     `json:"tier_weight"`
	Score      float64 `json:"priority_score"`
}

// KeyValue is a labelled aggregate used by top-N breakdowns
type KeyValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
	Share float64 `json:"share,omitempty"`
}

// TierCount is the number of records (or companies) in one strategy tier
type TierCount struct {
	Tier  string `json:"tier"`
	Count int    `json:"count"`
}
