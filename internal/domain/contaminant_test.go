package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterRecommendations(t *testing.T) {
	c := Contaminant{Filtration: Filtration{ReverseOsmosis: true, IonExchange: true}}

	recs := c.FilterRecommendations()

	assert.Equal(t, []FilterRecommendation{
		{Method: "Reverse Osmosis filtration", Recommended: true},
		{Method: "Activated Carbon filtration", Recommended: false},
		{Method: "Ion Exchange", Recommended: true},
	}, recs)
	assert.Equal(t, "Reverse Osmosis filtration", recs[0].Markdown())
	assert.Equal(t, "~~Activated Carbon filtration~~", recs[1].Markdown())
}

func TestFilterRecommendations_NoneSet(t *testing.T) {
	for _, rec := range (Contaminant{}).FilterRecommendations() {
		assert.False(t, rec.Recommended)
	}
}

func TestIsForeverChemical(t *testing.T) {
	assert.True(t, Contaminant{Name: "PFOS"}.IsForeverChemical())
	assert.True(t, Contaminant{Name: "PFOA"}.IsForeverChemical())
	assert.False(t, Contaminant{Name: "Lead"}.IsForeverChemical())
}

func TestContaminant_Matches(t *testing.T) {
	c := Contaminant{Name: "Total Trihalomethanes", AltNames: []string{"TTHM", "THMs"}}

	assert.True(t, c.Matches("total trihalomethanes"))
	assert.True(t, c.Matches(" tthm "))
	assert.True(t, c.Matches("THMs"))
	assert.False(t, c.Matches("HAA5"))
}

func TestParseStandardKind(t *testing.T) {
	assert.Equal(t, StandardPrimary, ParseStandardKind(" PRIMARY"))
	assert.Equal(t, StandardSecondary, ParseStandardKind("secondary"))
	assert.Equal(t, StandardKind("Unregulated"), ParseStandardKind("Unregulated "))
	assert.False(t, ParseStandardKind("Unregulated").Known())
	assert.True(t, StandardPrimary.Known())
}

func TestWaterUtility_Serves(t *testing.T) {
	u := WaterUtility{Territory: []string{"Austin TX, 78701", "Austin TX, 78702"}}
	assert.True(t, u.Serves("austin tx, 78702"))
	assert.False(t, u.Serves("Dallas TX, 75201"))
}
