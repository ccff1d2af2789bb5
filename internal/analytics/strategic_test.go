package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

func scoredKeys(scored []domain.ScoredRecord) []string {
	out := make([]string, len(scored))
	for i, s := range scored {
		out[i] = s.PrimaryKey
	}
	return out
}

func TestMinesPareto(t *testing.T) {
	mp := MinesPareto(tenMines(), 80)

	assert.Equal(t, []string{"M8", "M7", "M6", "M5"}, mp.Pareto.Keys())
	assert.Equal(t, 10, mp.TotalMines)
	assert.Equal(t, 4, mp.ParetoMines)
	assert.InDelta(t, 40, mp.ParetoMinesShare, 1e-9)
	assert.InDelta(t, 2600, mp.ParetoRoyalty, 1e-9)
	assert.Equal(t, 1, mp.MappedInPareto)
	assert.InDelta(t, 25, mp.MappedShare, 1e-9)
	assert.Equal(t, 3, mp.Gap)
	assert.InDelta(t, 240, mp.AnnualMapped, 1e-9)
	assert.InDelta(t, 240.0/2600*100, mp.CaptureRate, 1e-9)
	assert.Equal(t, []domain.TierCount{
		{Tier: "TEC01", Count: 1},
		{Tier: "TEC02", Count: 0},
		{Tier: "TEC03", Count: 0},
		{Tier: "TEC04", Count: 1},
		{Tier: "TEC05", Count: 1},
	}, mp.Tiers)
}

func TestGroupAnalysis(t *testing.T) {
	ga := GroupAnalysis(tenMines(), StrategicOptions{Threshold: 90})

	assert.Equal(t, []string{"Anglo", "Vale"}, ga.Pareto.Keys())
	assert.Equal(t, 3, ga.Pareto.Candidates, "sentinel holdings are excluded")
	assert.Equal(t, 2, ga.ParetoGroups)
	assert.Equal(t, 3, ga.ParetoMines)
	assert.InDelta(t, 1500, ga.ParetoRoyalty, 1e-9)

	require.Len(t, ga.Chart, 2)
	vale := ga.Chart[1]
	assert.Equal(t, "Vale", vale.Group)
	assert.Equal(t, 2, vale.Mines)
	assert.InDelta(t, 700, vale.Royalty, 1e-9)
	assert.InDelta(t, 700.0/1850*100, vale.ShareOfTotal, 1e-9)
	assert.Equal(t, 1, vale.Mapped)
	assert.InDelta(t, 50, vale.MappedShare, 1e-9)
	assert.InDelta(t, 20, vale.MonthlyValue, 1e-9)
	assert.InDelta(t, 240, vale.AnnualValue, 1e-9)
	assert.InDelta(t, 1500.0/1850*100, vale.CumulativePct, 1e-9)

	states := make([]string, len(ga.TopStates))
	for i, kv := range ga.TopStates {
		states[i] = kv.Key
	}
	assert.Equal(t, []string{"BA", "MG", "PA"}, states)
	assert.Empty(t, ga.TopSubstances)

	assert.Equal(t, 2, ga.GroupsWithGap)
	assert.InDelta(t, 900, ga.GapRoyalty, 1e-9)
	assert.Equal(t, 2, ga.GapMines)
	assert.Equal(t, []string{"M8", "M1"}, scoredKeys(ga.PriorityTargets))
}

func TestGroupAnalysisLimits(t *testing.T) {
	ga := GroupAnalysis(tenMines(), StrategicOptions{Threshold: 90, ChartTopN: 1, PriorityGroups: 1, PriorityTargets: 5})

	require.Len(t, ga.Chart, 1)
	assert.Equal(t, "Anglo", ga.Chart[0].Group)
	assert.Equal(t, 2, ga.ParetoGroups)
	assert.Equal(t, []string{"M8"}, scoredKeys(ga.PriorityTargets))
}

func TestOpportunities(t *testing.T) {
	op := Opportunities(tenMines(), 3)

	assert.Equal(t, 7, op.UnmappedCount)
	assert.InDelta(t, 2700, op.GapRoyalty, 1e-9)
	assert.Equal(t, 2, op.Groups)
	require.NotNil(t, op.Largest)
	assert.Equal(t, "M8", op.Largest.PrimaryKey)

	assert.Equal(t, 3, op.PriorityCount)
	assert.InDelta(t, 300, op.PriorityRoyalty, 1e-9)
	assert.InDelta(t, 300.0/2700*100, op.PriorityShare, 1e-9)

	states := make([]string, len(op.TopStates))
	for i, kv := range op.TopStates {
		states[i] = kv.Key
	}
	assert.Equal(t, []string{"BA", "MG", "GO"}, states)
	require.Len(t, op.TopGroups, 2)
	assert.Equal(t, "Anglo", op.TopGroups[0].Key)
	assert.Equal(t, "Vale", op.TopGroups[1].Key)

	assert.Equal(t, []string{"M7", "M4", "M2"}, scoredKeys(op.Ranked))
}

func TestOpportunitiesEmpty(t *testing.T) {
	op := Opportunities(nil, 0)
	assert.Zero(t, op.UnmappedCount)
	assert.Nil(t, op.Largest)
	assert.Zero(t, op.PriorityShare)
	assert.NotNil(t, op.Ranked)
	assert.NotNil(t, op.TopStates)
}

func TestStrategicDefaults(t *testing.T) {
	sa := Strategic(tenMines(), StrategicOptions{})

	assert.Equal(t, DefaultParetoThreshold, sa.Mines.Pareto.Threshold)
	assert.Equal(t, DefaultParetoThreshold, sa.Groups.Pareto.Threshold)
	assert.Equal(t, []string{"Anglo"}, sa.Groups.Pareto.Keys())
	assert.Len(t, sa.Opportunities.Ranked, 7)

	empty := Strategic(nil, StrategicOptions{})
	assert.Zero(t, empty.Mines.TotalMines)
	assert.Empty(t, empty.Groups.Chart)
	assert.Empty(t, empty.Groups.PriorityTargets)
}
