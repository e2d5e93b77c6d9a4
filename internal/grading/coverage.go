package grading

import "github.com/stemsi/jadwal-backend/internal/model"

// Range is an inclusive whole-percent interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) String() string {
	return pct(r.Min) + "-" + pct(r.Max) + "%"
}

// Gaps lists the runs of whole-number scores in [0, 100] that no band
// covers. A fractional score is classified by its whole part, so bands
// ending at 49 and starting at 50 leave no gap, while bands [0, 49] and
// [50.5, 100] leave 50 uncovered. The result is advisory and never blocks a
// save; administrators may build a scale up gradually.
func Gaps(bands []model.GradeBand) []Range {
	gaps := make([]Range, 0)
	open := false
	for score := MinPercentage; score <= MaxPercentage; score++ {
		if _, ok := find(bands, score); ok {
			open = false
			continue
		}
		if open {
			gaps[len(gaps)-1].Max = score
			continue
		}
		gaps = append(gaps, Range{Min: score, Max: score})
		open = true
	}
	return gaps
}
