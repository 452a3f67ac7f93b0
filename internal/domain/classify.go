package domain

import "fmt"

// Classification partitions a batch of readings by standard kind.
// len(Primary)+len(Secondary)+Dropped always equals the input length.
type Classification struct {
	Primary     []Reading
	Secondary   []Reading
	Dropped     int
	Diagnostics Diagnostics
}

// Classify splits readings into primary and secondary, preserving input order.
// Unresolved readings and readings whose reference has no recognized standard
// are dropped and recorded.
func Classify(readings []Reading) Classification {
	var c Classification
	for _, r := range readings {
		if r.Contaminant == nil {
			c.drop(r, fmt.Errorf("classify %q: %w", r.ContaminantName, ErrUnresolvedContaminant))
			continue
		}
		switch r.Contaminant.Standard {
		case StandardPrimary:
			c.Primary = append(c.Primary, r)
		case StandardSecondary:
			c.Secondary = append(c.Secondary, r)
		default:
			c.drop(r, fmt.Errorf("classify %q: standard %q: %w",
				r.ContaminantName, r.Contaminant.Standard, ErrUnresolvedContaminant))
		}
	}
	return c
}

func (c *Classification) drop(r Reading, err error) {
	c.Dropped++
	c.Diagnostics.Record(r.ContaminantName, r.Year, err)
}
