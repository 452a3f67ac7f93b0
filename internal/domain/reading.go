package domain

import "strings"

// Reading is one observed measurement for one contaminant in one utility-year.
// Statistical fields are nil when the report left them blank.
type Reading struct {
	Year            int          `json:"year"`
	Origin          string       `json:"origin"` // PWSID of the reporting utility
	ContaminantName string       `json:"contaminant"`
	Contaminant     *Contaminant `json:"-"` // nil until resolved
	Unit            Unit         `json:"units"`

	Max                            *float64 `json:"max"`
	Min                            *float64 `json:"min"`
	AnnualAverage                  *float64 `json:"annual_avg"`
	LocationalRunningAnnualAverage *float64 `json:"lraa"`
	RunningAnnualAverage           *float64 `json:"raa"`
	NinetiethPercentile            *float64 `json:"ninetieth_perc"`
	Violation                      *int     `json:"violation"`
	SampleCount                    *int     `json:"sample_num"`
}

// Resolved reports whether reference data has been attached.
func (r Reading) Resolved() bool {
	return r.Contaminant != nil
}

// WaterUtility is a public water system and the territories it serves.
type WaterUtility struct {
	Name         string   `json:"name"`
	PWSID        string   `json:"pwsid"`
	Street       string   `json:"street,omitempty"`
	CityStateZip string   `json:"city_state_zip,omitempty"`
	Supply       string   `json:"supply,omitempty"`
	Treatment    string   `json:"treatment,omitempty"`
	Territory    []string `json:"territory"` // "City ST, zip" entries
	LastUpdated  int      `json:"last_updated"`
	PDF          string   `json:"pdf,omitempty"`
	Publish      string   `json:"publish,omitempty"`
}

// ReportYear is the sampling year covered by the utility's latest report.
// Reports published in a year describe the previous calendar year.
func (u WaterUtility) ReportYear() int {
	return u.LastUpdated - 1
}

// Serves reports whether territory is one of the utility's territories.
func (u WaterUtility) Serves(territory string) bool {
	territory = strings.TrimSpace(territory)
	for _, t := range u.Territory {
		if strings.EqualFold(t, territory) {
			return true
		}
	}
	return false
}
