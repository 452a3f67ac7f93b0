package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input   string
		want    Unit
		wantErr bool
	}{
		{"ppb", UnitPPB, false},
		{" PPM ", UnitPPM, false},
		{"Ppt", UnitPPT, false},
		{"mg/L", "", true},
		{"", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseUnit(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrUnitConversion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnit_Name(t *testing.T) {
	assert.Equal(t, "parts per trillion (ppt)", UnitPPT.Name())
	assert.Equal(t, "parts per billion (ppb)", UnitPPB.Name())
	assert.Equal(t, "parts per million (ppm)", UnitPPM.Name())
}

func TestConvertUnit(t *testing.T) {
	tests := []struct {
		name     string
		from, to Unit
		value    float64
		expected float64
	}{
		{"ppt to ppb", UnitPPT, UnitPPB, 5000, 5},
		{"ppt to ppm", UnitPPT, UnitPPM, 2_000_000, 2},
		{"ppb to ppt", UnitPPB, UnitPPT, 4, 4000},
		{"ppb to ppm", UnitPPB, UnitPPM, 40, 0.04},
		{"ppm to ppt", UnitPPM, UnitPPT, 0.5, 500_000},
		{"ppm to ppb", UnitPPM, UnitPPB, 0.04, 40},
		{"same unit", UnitPPB, UnitPPB, 7.5, 7.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ConvertUnit(tc.value, tc.from, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestConvertUnit_NaNPropagates(t *testing.T) {
	got, err := ConvertUnit(math.NaN(), UnitPPB, UnitPPM)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestConvertUnit_UnknownUnit(t *testing.T) {
	_, err := ConvertUnit(1, "mg/L", UnitPPM)
	require.ErrorIs(t, err, ErrUnitConversion)
	assert.Contains(t, err.Error(), "observed")

	_, err = ConvertUnit(1, UnitPPM, "grains")
	require.ErrorIs(t, err, ErrUnitConversion)
	assert.Contains(t, err.Error(), "reference")
}
