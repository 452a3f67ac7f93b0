package domain

func ptr[T any](v T) *T { return &v }

func primaryRef(name string, unit Unit, goal, limit *float64) *Contaminant {
	return &Contaminant{
		Name:       name,
		Standard:   StandardPrimary,
		Unit:       unit,
		HealthGoal: goal,
		LegalLimit: limit,
	}
}

func secondaryRef(name string, unit Unit) *Contaminant {
	return &Contaminant{
		Name:     name,
		Standard: StandardSecondary,
		Unit:     unit,
		Remedy:   "Use a water softener.",
	}
}

func reading(ref *Contaminant, name string, unit Unit, maxVal *float64) Reading {
	return Reading{
		Year:            2022,
		Origin:          "TX0000001",
		ContaminantName: name,
		Contaminant:     ref,
		Unit:            unit,
		Max:             maxVal,
	}
}
