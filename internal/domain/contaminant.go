package domain

import (
	"slices"
	"strings"
)

// StandardKind is the EPA standard a contaminant is regulated under.
type StandardKind string

const (
	StandardPrimary   StandardKind = "Primary"
	StandardSecondary StandardKind = "Secondary"
)

// ParseStandardKind matches "primary" or "secondary" case-insensitively.
// Anything else is returned trimmed but unrecognized; see Known.
func ParseStandardKind(s string) StandardKind {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "primary":
		return StandardPrimary
	case "secondary":
		return StandardSecondary
	default:
		return StandardKind(s)
	}
}

// Known reports whether k is Primary or Secondary.
func (k StandardKind) Known() bool {
	return k == StandardPrimary || k == StandardSecondary
}

// Filtration flags which home treatment methods remove a contaminant.
type Filtration struct {
	ReverseOsmosis  bool `json:"reverse_osmosis"`
	ActivatedCarbon bool `json:"activated_carbon"`
	IonExchange     bool `json:"ion_exchange"`
}

// Contaminant is immutable reference data for one contaminant.
type Contaminant struct {
	Name       string       `json:"name"`
	AltNames   []string     `json:"alt_names,omitempty"`
	Standard   StandardKind `json:"standard"`
	Category   string       `json:"category,omitempty"`
	Unit       Unit         `json:"unit"`
	HealthGoal *float64     `json:"health_goal"` // MCLG; nil when unknown
	LegalLimit *float64     `json:"legal_limit"` // MCL; nil when unknown
	Filtration Filtration   `json:"filtration"`
	Risk       string       `json:"risk,omitempty"`
	Source     string       `json:"source,omitempty"`
	Remedy     string       `json:"remedy,omitempty"`
	Effects    string       `json:"effects,omitempty"`
}

// forever lists the per- and polyfluoroalkyl substances flagged in reports.
var forever = []string{"PFOS", "PFOA"}

// IsForeverChemical reports whether the contaminant is a PFAS "forever chemical".
func (c Contaminant) IsForeverChemical() bool {
	return slices.Contains(forever, c.Name)
}

// Matches reports whether name equals the contaminant name or one of its
// alternate names, ignoring case.
func (c Contaminant) Matches(name string) bool {
	name = strings.TrimSpace(name)
	if strings.EqualFold(c.Name, name) {
		return true
	}
	return slices.ContainsFunc(c.AltNames, func(alt string) bool {
		return strings.EqualFold(alt, name)
	})
}

// FilterRecommendation is one treatment method and whether it is effective.
type FilterRecommendation struct {
	Method      string `json:"method"`
	Recommended bool   `json:"recommended"`
}

// Markdown renders the label, struck through when not recommended.
func (f FilterRecommendation) Markdown() string {
	if f.Recommended {
		return f.Method
	}
	return "~~" + f.Method + "~~"
}

// FilterRecommendations returns reverse osmosis, activated carbon, and ion
// exchange in that order, each flagged from the contaminant's filtration data.
func (c Contaminant) FilterRecommendations() []FilterRecommendation {
	return []FilterRecommendation{
		{Method: "Reverse Osmosis filtration", Recommended: c.Filtration.ReverseOsmosis},
		{Method: "Activated Carbon filtration", Recommended: c.Filtration.ActivatedCarbon},
		{Method: "Ion Exchange", Recommended: c.Filtration.IonExchange},
	}
}
