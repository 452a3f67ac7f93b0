package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRanking_SortedDescending(t *testing.T) {
	arsenic := primaryRef("Arsenic", UnitPPB, ptr(2.0), ptr(10.0))
	nitrate := primaryRef("Nitrate", UnitPPM, ptr(10.0), ptr(10.0))
	barium := primaryRef("Barium", UnitPPM, ptr(0.04), ptr(0.08))

	ranking, diag := BuildRanking([]Reading{
		reading(nitrate, "Nitrate", UnitPPM, ptr(2.0)), // -0.8
		reading(arsenic, "Arsenic", UnitPPB, ptr(6.0)), // 2
		reading(barium, "Barium", UnitPPB, ptr(40.0)),  // 0 after calibration
	})

	assert.Zero(t, diag.Total())
	require.Equal(t, 3, ranking.Len())
	assert.Equal(t, "Arsenic", ranking.Findings[0].Contaminant.Name)
	assert.Equal(t, "Barium", ranking.Findings[1].Contaminant.Name)
	assert.Equal(t, "Nitrate", ranking.Findings[2].Contaminant.Name)

	assert.Equal(t, Factor(0), ranking.Findings[1].Factor)
	assert.Equal(t, 0.04, *ranking.Findings[1].Max)
	assert.Equal(t, UnitPPM, ranking.Findings[1].Unit)
	assert.Equal(t, 0.08, *ranking.Findings[1].LegalLimit)

	for i := 1; i < ranking.Len(); i++ {
		assert.GreaterOrEqual(t, float64(ranking.Findings[i-1].Factor), float64(ranking.Findings[i].Factor))
	}
}

func TestBuildRanking_ZeroGoalSortsFirst(t *testing.T) {
	lead := primaryRef("Lead", UnitPPB, ptr(0.0), ptr(15.0))
	nitrate := primaryRef("Nitrate", UnitPPM, ptr(1.0), ptr(10.0))

	ranking, _ := BuildRanking([]Reading{
		reading(nitrate, "Nitrate", UnitPPM, ptr(1e9)),
		reading(lead, "Lead", UnitPPB, ptr(0.0001)),
	})

	require.Equal(t, 2, ranking.Len())
	assert.Equal(t, "Lead", ranking.Findings[0].Contaminant.Name)
	assert.True(t, math.IsInf(float64(ranking.Findings[0].Factor), 1))
}

func TestBuildRanking_StableOnTies(t *testing.T) {
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	var readings []Reading
	for _, n := range names {
		ref := primaryRef(n, UnitPPB, ptr(1.0), nil)
		readings = append(readings, reading(ref, n, UnitPPB, ptr(2.0)))
	}
	// An infinite factor ahead of the ties must not disturb their order.
	readings = append(readings, reading(primaryRef("Zulu", UnitPPB, ptr(0.0), nil), "Zulu", UnitPPB, ptr(1.0)))

	ranking, _ := BuildRanking(readings)

	require.Equal(t, 6, ranking.Len())
	assert.Equal(t, "Zulu", ranking.Findings[0].Contaminant.Name)
	for i, n := range names {
		assert.Equal(t, n, ranking.Findings[i+1].Contaminant.Name)
	}
}

func TestBuildRanking_SkipsAndCounts(t *testing.T) {
	noGoal := primaryRef("Chromium", UnitPPB, nil, ptr(100.0))
	badUnit := primaryRef("Radium", "pCi/L", ptr(0.0), ptr(5.0))
	copper := primaryRef("Copper", UnitPPM, ptr(1.3), ptr(1.3))
	tds := secondaryRef("TDS", UnitPPM)

	ranking, diag := BuildRanking([]Reading{
		reading(noGoal, "Chromium", UnitPPB, ptr(5.0)),
		reading(badUnit, "Radium", UnitPPB, ptr(1.0)),
		reading(copper, "Copper", UnitPPM, ptr(0.65)),
		reading(tds, "TDS", UnitPPM, ptr(300.0)),
		reading(nil, "Unknown", UnitPPB, ptr(1.0)),
	})

	require.Equal(t, 1, ranking.Len())
	assert.Equal(t, "Copper", ranking.Findings[0].Contaminant.Name)

	assert.Equal(t, 4, diag.Total())
	assert.Equal(t, 1, diag.Count(ReasonDomainValue))
	assert.Equal(t, 1, diag.Count(ReasonUnitConversion))
	assert.Equal(t, 1, diag.Count(ReasonStandardMismatch))
	assert.Equal(t, 1, diag.Count(ReasonUnresolvedContaminant))
}

func TestBuildRanking_SameUnrecognizedUnitIsSkipped(t *testing.T) {
	radium := primaryRef("Radium", "pCi/L", ptr(0.0), ptr(5.0))

	ranking, diag := BuildRanking([]Reading{reading(radium, "Radium", "pCi/L", ptr(1.0))})

	assert.Zero(t, ranking.Len())
	assert.Equal(t, 1, diag.Total())
	assert.Equal(t, 1, diag.Count(ReasonUnitConversion))
}

func TestBuildRanking_NonFiniteLevelIsSkipped(t *testing.T) {
	copper := primaryRef("Copper", UnitPPM, ptr(1.3), ptr(1.3))
	pfos := primaryRef("PFOS", UnitPPT, ptr(0.0), ptr(4.0))
	pct := reading(copper, "Copper", UnitPPM, nil)
	pct.NinetiethPercentile = ptr(math.Inf(1))

	ranking, diag := BuildRanking([]Reading{
		reading(copper, "Copper", UnitPPM, ptr(math.Inf(-1))),
		pct,
		reading(pfos, "PFOS", UnitPPM, ptr(math.MaxFloat64)),
	})

	assert.Zero(t, ranking.Len())
	assert.Equal(t, 3, diag.Count(ReasonDomainValue))
}

func TestBuildRanking_PercentileFallback(t *testing.T) {
	lead := primaryRef("Copper", UnitPPM, ptr(1.3), ptr(1.3))
	r := reading(lead, "Copper", UnitPPM, nil)
	r.NinetiethPercentile = ptr(2.6)

	ranking, diag := BuildRanking([]Reading{r})
	require.Zero(t, diag.Total())
	require.Equal(t, 1, ranking.Len())

	f := ranking.Findings[0]
	assert.InDelta(t, 1.0, float64(f.Factor), 1e-12)
	assert.Equal(t, 2.6, *f.Observed())
	assert.True(t, f.OverLegalLimit())
}

func TestRanking_TopAndRest(t *testing.T) {
	var findings []PrimaryFinding
	for i := range 7 {
		findings = append(findings, PrimaryFinding{Factor: Factor(10 - i)})
	}
	r := Ranking{Findings: findings}

	assert.Len(t, r.Top(5), 5)
	assert.Len(t, r.Rest(5), 2)
	assert.Equal(t, Factor(5), r.Rest(5)[0].Factor)

	assert.Len(t, r.Top(100), 7)
	assert.Empty(t, r.Rest(100))
	assert.Empty(t, r.Top(-1))
	assert.Len(t, r.Rest(-1), 7)
	assert.Empty(t, Ranking{}.Top(5))
}

func TestPrimaryFinding_OverLegalLimit(t *testing.T) {
	assert.False(t, PrimaryFinding{Max: ptr(5.0)}.OverLegalLimit(), "unknown limit")
	assert.False(t, PrimaryFinding{Max: ptr(5.0), LegalLimit: ptr(10.0)}.OverLegalLimit())
	assert.True(t, PrimaryFinding{Max: ptr(11.0), LegalLimit: ptr(10.0)}.OverLegalLimit())
}

func TestFactor_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Factor(math.Inf(1)))
	require.NoError(t, err)
	assert.JSONEq(t, `"Infinity"`, string(data))

	data, err = json.Marshal(Factor(math.Inf(-1)))
	require.NoError(t, err)
	assert.JSONEq(t, `"-Infinity"`, string(data))

	data, err = json.Marshal(Factor(1.5))
	require.NoError(t, err)
	assert.JSONEq(t, `1.5`, string(data))
}
