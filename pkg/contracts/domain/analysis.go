package domain

// Overview is the headline KPI block over a (possibly filtered) record set
type Overview struct {
	FiltersActive bool `json:"filters_active"`

	TotalMines   int     `json:"total_mines"`
	RoyaltyTotal float64 `json:"royalty_total"`
	AvgTicket    float64 `json:"avg_ticket"`

	GroupCount      int        `json:"group_count"`
	GroupRoyalty    float64    `json:"group_royalty"`
	AvgGroupTicket  float64    `json:"avg_group_ticket"`
	TopGroups       []KeyValue `json:"top_groups"`
	TopSubstances   []KeyValue `json:"top_substances"`
	TopStates       []KeyValue `json:"top_states"`
	MinesWithGroup  int        `json:"mines_with_group"`

	MappedCount          int         `json:"mapped_count"`
	MappedShareOfTotal   float64     `json:"mapped_share_of_total"`
	MappedShareOfGrouped float64     `json:"mapped_share_of_grouped"`
	MonthlyMappedValue   float64     `json:"monthly_mapped_value"`
	AnnualMappedValue    float64     `json:"annual_mapped_value"`
	ValueRoyaltyIndex    float64     `json:"value_royalty_index"`
	CompaniesPerTier     []TierCount `json:"companies_per_tier"`
	MappedAvgRoyalty     float64     `json:"mapped_avg_royalty"`
	MappedAvgAnnualValue float64     `json:"mapped_avg_annual_value"`
}

// MinesPareto summarises the individual-mine Pareto set
type MinesPareto struct {
	Pareto           ParetoResult `json:"pareto"`
	TotalMines       int          `json:"total_mines"`
	ParetoMines      int          `json:"pareto_mines"`
	ParetoMinesShare float64      `json:"pareto_mines_share"`
	ParetoRoyalty    float64      `json:"pareto_royalty"`
	MappedInPareto   int          `json:"mapped_in_pareto"`
	MappedShare      float64      `json:"mapped_share"`
	Gap              int          `json:"gap"`
	AnnualMapped     float64      `json:"annual_mapped"`
	CaptureRate      float64      `json:"capture_rate"`
	Tiers            []TierCount  `json:"tiers"`
}

// GroupBreakdown details one holding of the grouped Pareto chart
type GroupBreakdown struct {
	Group         string  `json:"group"`
	Mines         int     `json:"mines"`
	Royalty       float64 `json:"royalty"`
	ShareOfTotal  float64 `json:"share_of_total"`
	Mapped        int     `json:"mapped"`
	MappedShare   float64 `json:"mapped_share"`
	MonthlyValue  float64 `json:"monthly_value"`
	AnnualValue   float64 `json:"annual_value"`
	CumulativePct float64 `json:"cumulative_share"`
}

// GroupAnalysis is the holdings concentration report
type GroupAnalysis struct {
	Pareto          ParetoResult     `json:"pareto"`
	Chart           []GroupBreakdown `json:"chart"`
	ParetoGroups    int              `json:"pareto_groups"`
	ParetoMines     int              `json:"pareto_mines"`
	ParetoRoyalty   float64          `json:"pareto_royalty"`
	TopSubstances   []KeyValue       `json:"top_substances"`
	TopStates       []KeyValue       `json:"top_states"`
	GroupsWithGap   int              `json:"groups_with_gap"`
	GapRoyalty      float64          `json:"gap_royalty"`
	GapMines        int              `json:"gap_mines"`
	PriorityTargets []ScoredRecord   `json:"priority_targets"`
}

// Opportunities describes the unmapped gap
type Opportunities struct {
	UnmappedCount   int            `json:"unmapped_count"`
	GapRoyalty      float64        `json:"gap_royalty"`
	Groups          int            `json:"groups"`
	Largest         *Record        `json:"largest,omitempty"`
	PriorityCount   int            `json:"priority_tier_count"`
	PriorityRoyalty float64        `json:"priority_tier_royalty"`
	PriorityShare   float64        `json:"priority_tier_share"`
	TopStates       []KeyValue     `json:"top_states"`
	TopGroups       []KeyValue     `json:"top_groups"`
	Ranked          []ScoredRecord `json:"ranked"`
}

// StrategicAnalysis bundles the three strategic sections
type StrategicAnalysis struct {
	Mines         MinesPareto   `json:"mines"`
	Groups        GroupAnalysis `json:"groups"`
	Opportunities Opportunities `json:"opportunities"`
}
