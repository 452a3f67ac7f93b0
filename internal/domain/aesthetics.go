package domain

// guideline is an EPA secondary-standard recommendation. Zero bounds are unset.
type guideline struct {
	name string
	low  float64
	high float64
	help string
}

var guidelines = []guideline{
	{name: SecondaryTDS, high: 500, help: "Total Dissolved Solids should be below 500 as recommended by EPA"},
	{name: SecondaryHardness, high: 250, help: "Hardness should be below 250 as recommended by EPA"},
	{name: SecondaryPH, low: 6.5, high: 8.5, help: "pH levels should be between 6.5 - 8.5 as recommended by EPA"},
}

// Aesthetic summarizes one well-known secondary contaminant against its guideline.
type Aesthetic struct {
	Name      string   `json:"name"`
	Available bool     `json:"available"`
	Value     *float64 `json:"value"`
	Unit      Unit     `json:"unit,omitempty"`
	// Delta is Value minus the upper guideline; only set for upper-bound-only guidelines.
	Delta     *float64 `json:"delta,omitempty"`
	Within    *bool    `json:"within_guideline,omitempty"`
	Guideline string   `json:"guideline"`
}

// Aesthetics evaluates TDS, Hardness, and pH from the secondary index. A
// missing contaminant yields an entry with Available false.
func Aesthetics(idx SecondaryIndex) []Aesthetic {
	out := make([]Aesthetic, 0, len(guidelines))
	for _, g := range guidelines {
		a := Aesthetic{Name: g.name, Guideline: g.help}

		f, err := idx.Lookup(g.name)
		if err != nil || !known(f.Max) {
			out = append(out, a)
			continue
		}

		v := *f.Max
		a.Available = true
		a.Value = &v
		a.Unit = f.Unit

		within := v <= g.high && (g.low == 0 || v >= g.low)
		a.Within = &within
		if g.low == 0 {
			d := v - g.high
			a.Delta = &d
		}
		out = append(out, a)
	}
	return out
}
