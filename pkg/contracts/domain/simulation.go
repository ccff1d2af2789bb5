package domain

// SimulatedOpportunity is a ranked unmapped record with its projected potential
type SimulatedOpportunity struct {
	ScoredRecord
	AnnualPotential  float64 `json:"annual_potential"`
	MonthlyPotential float64 `json:"monthly_potential"`
}

// SimulationResult holds the projections for one capture rate
type SimulationResult struct {
	CaptureRate      float64 `json:"capture_rate"`
	BaseRecords      int     `json:"base_records"`
	BaseRoyalty      float64 `json:"base_royalty"`
	ProjectedAnnual  float64 `json:"projected_annual"`
	ProjectedMonthly float64 `json:"projected_monthly"`

	UnmappedCount  int     `json:"unmapped_count"`
	TicketSample   int     `json:"ticket_sample"`
	TicketRoyalty  float64 `json:"ticket_royalty"`
	AvgTicket      float64 `json:"avg_ticket"`
	TotalPotential float64 `json:"total_potential"`

	Top []SimulatedOpportunity `json:"top"`
}

// SimulationReference contrasts the filtered base with the full market
type SimulationReference struct {
	Mines             int         `json:"mines"`
	MarketShare       float64     `json:"market_share"`
	Royalty           float64     `json:"royalty"`
	RoyaltyShare      float64     `json:"royalty_share"`
	Tiers             []TierCount `json:"tiers"`
	Mapped            int         `json:"mapped"`
	MappedShare       float64     `json:"mapped_share"`
	AnnualMapped      float64     `json:"annual_mapped"`
	AvgAnnualMapped   float64     `json:"avg_annual_mapped"`
	ValueRate         float64     `json:"value_rate"`
	TEC01Mapped       int         `json:"tec01_mapped"`
	TEC01Rate         float64     `json:"tec01_rate"`
	TEC01RateReliable bool        `json:"tec01_rate_reliable"`
}
