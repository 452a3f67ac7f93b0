package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_LastWins(t *testing.T) {
	a := secondaryRef("Hardness", UnitPPM)
	b := secondaryRef("TDS", UnitPPM)

	idx, diag := BuildIndex([]Reading{
		reading(a, "Hardness", UnitPPM, ptr(1.0)),
		reading(b, "TDS", UnitPPM, ptr(2.0)),
		reading(a, "Hardness", UnitPPM, ptr(3.0)),
	})

	assert.Zero(t, diag.Total())
	assert.Equal(t, 2, idx.Len())

	hardness, err := idx.Lookup("Hardness")
	require.NoError(t, err)
	assert.Equal(t, 3.0, *hardness.Max)
	assert.Equal(t, "Use a water softener.", hardness.Remedy)

	tds, err := idx.Lookup("TDS")
	require.NoError(t, err)
	assert.Equal(t, 2.0, *tds.Max)

	assert.Equal(t, []string{"Hardness", "TDS"}, idx.Names())
}

func TestBuildIndex_KeyedByReferenceName(t *testing.T) {
	ref := secondaryRef("TDS", UnitPPM)
	idx, _ := BuildIndex([]Reading{reading(ref, "Total Dissolved Solids", UnitPPM, ptr(410.0))})

	_, err := idx.Lookup("TDS")
	require.NoError(t, err)
}

func TestSecondaryIndex_LookupByAlias(t *testing.T) {
	ref := secondaryRef("Total Dissolved Solids", UnitPPM)
	ref.AltNames = []string{"TDS"}
	idx, _ := BuildIndex([]Reading{reading(ref, "Total Dissolved Solids", UnitPPM, ptr(410.0))})

	f, err := idx.Lookup(SecondaryTDS)
	require.NoError(t, err)
	assert.Equal(t, 410.0, *f.Max)
	assert.Equal(t, []string{"Total Dissolved Solids"}, idx.Names())
}

func TestSecondaryIndex_LookupMissing(t *testing.T) {
	idx, _ := BuildIndex(nil)
	_, err := idx.Lookup(SecondaryPH)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = SecondaryIndex{}.Lookup(SecondaryPH)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBuildIndex_SkipsNonSecondary(t *testing.T) {
	lead := primaryRef("Lead", UnitPPB, ptr(0.0), ptr(15.0))
	idx, diag := BuildIndex([]Reading{
		reading(lead, "Lead", UnitPPB, ptr(1.0)),
		reading(nil, "Iron", UnitPPM, ptr(1.0)),
	})
	assert.Zero(t, idx.Len())
	assert.Equal(t, 1, diag.Count(ReasonStandardMismatch))
	assert.Equal(t, 1, diag.Count(ReasonUnresolvedContaminant))
}

func TestSecondaryIndex_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(SecondaryIndex{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	idx, _ := BuildIndex([]Reading{reading(secondaryRef("pH", UnitPPM), "pH", UnitPPM, ptr(7.4))})
	data, err = json.Marshal(idx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pH":{"year":2022`)
}
