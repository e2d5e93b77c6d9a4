// Package grading validates percentage grade scales and maps scores onto them.
package grading

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/stemsi/jadwal-backend/internal/model"
)

// Scale bounds.
const (
	MinPercentage = 0.0
	MaxPercentage = 100.0
)

var (
	// ErrInvalidBand wraps per-band input problems (bounds, labels).
	ErrInvalidBand = errors.New("band nilai tidak valid")
	// ErrNoBand is returned by Classify when no band covers a percentage.
	ErrNoBand = errors.New("tidak ada band nilai untuk persentase ini")
)

// BandError reports two bands whose percentage intervals overlap.
type BandError struct {
	Lower model.GradeBand `json:"lower"`
	Upper model.GradeBand `json:"upper"`
}

func (e *BandError) Error() string {
	return fmt.Sprintf("band nilai %q (%s-%s) tumpang tindih dengan %q (%s-%s)",
		e.Lower.Label, pct(e.Lower.MinPercentage), pct(e.Lower.MaxPercentage),
		e.Upper.Label, pct(e.Upper.MinPercentage), pct(e.Upper.MaxPercentage))
}

// ValidateBands checks that no two bands overlap. Bands are compared in
// ascending order of MinPercentage, so input order does not matter and the
// input slice is left untouched. Gaps between bands are allowed.
func ValidateBands(bands []model.GradeBand) *BandError {
	sorted := sortedAscending(bands)

	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		if a.MaxPercentage >= b.MinPercentage {
			return &BandError{Lower: a, Upper: b}
		}
	}
	return nil
}

// CheckBands validates each band on its own: bounds inside [0, 100],
// min not above max, and labels present and unique (case-insensitive).
func CheckBands(bands []model.GradeBand) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: minimal satu band wajib diisi", ErrInvalidBand)
	}

	seen := make(map[string]struct{}, len(bands))
	for _, b := range bands {
		label := strings.TrimSpace(b.Label)
		if label == "" {
			return fmt.Errorf("%w: label wajib diisi", ErrInvalidBand)
		}
		key := strings.ToUpper(label)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: label %q dipakai dua kali", ErrInvalidBand, label)
		}
		seen[key] = struct{}{}

		if b.MinPercentage < MinPercentage || b.MaxPercentage > MaxPercentage {
			return fmt.Errorf("%w: %q harus berada di rentang 0-100", ErrInvalidBand, label)
		}
		if b.MinPercentage > b.MaxPercentage {
			return fmt.Errorf("%w: min_percentage %q melebihi max_percentage", ErrInvalidBand, label)
		}
	}
	return nil
}

// SortForDisplay returns a copy ordered by MinPercentage descending, the
// way report cards list grades (A first).
func SortForDisplay(bands []model.GradeBand) []model.GradeBand {
	sorted := sortedAscending(bands)
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return sorted
}

// Classify returns the band covering percentage. A score that falls between
// two whole-number bands (49.5 with bands ending at 49 and starting at 50)
// is truncated to whole percent and matched again.
func Classify(bands []model.GradeBand, percentage float64) (model.GradeBand, error) {
	if b, ok := find(bands, percentage); ok {
		return b, nil
	}
	if b, ok := find(bands, math.Floor(percentage)); ok {
		return b, nil
	}
	return model.GradeBand{}, ErrNoBand
}

func find(bands []model.GradeBand, p float64) (model.GradeBand, bool) {
	for _, b := range bands {
		if p >= b.MinPercentage && p <= b.MaxPercentage {
			return b, true
		}
	}
	return model.GradeBand{}, false
}

func sortedAscending(bands []model.GradeBand) []model.GradeBand {
	sorted := make([]model.GradeBand, len(bands))
	copy(sorted, bands)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPercentage < sorted[j].MinPercentage
	})
	return sorted
}

// Round rounds v to the two decimals kept for percentages and grade points.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
