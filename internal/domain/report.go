package domain

import "time"

// Report is everything a renderer needs for one utility-year.
type Report struct {
	Utility     WaterUtility   `json:"utility"`
	Territory   string         `json:"territory"`
	Year        int            `json:"year"`
	Ranking     Ranking        `json:"ranking"`
	Secondary   SecondaryIndex `json:"secondary"`
	Aesthetics  []Aesthetic    `json:"aesthetics"`
	Diagnostics Diagnostics    `json:"diagnostics"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// AssembleReport classifies readings, ranks the primary ones, and indexes the
// secondary ones. prior carries skips recorded before classification, such as
// malformed records.
func AssembleReport(u WaterUtility, territory string, readings []Reading, prior Diagnostics) Report {
	c := Classify(readings)
	ranking, rankDiag := BuildRanking(c.Primary)
	index, indexDiag := BuildIndex(c.Secondary)

	diag := prior
	diag.Merge(c.Diagnostics)
	diag.Merge(rankDiag)
	diag.Merge(indexDiag)

	return Report{
		Utility:     u,
		Territory:   territory,
		Year:        u.ReportYear(),
		Ranking:     ranking,
		Secondary:   index,
		Aesthetics:  Aesthetics(index),
		Diagnostics: diag,
		GeneratedAt: clock.Now(),
	}
}
