// Package progress renders Unicode block progress bars.
package progress

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DefaultBarLength is the number of cells in a rendered bar.
const DefaultBarLength = 20

var ErrOverflow = errors.New("progress value exceeds maximum")

// Bar renders value/max as a bar of barLength cells. Filled cells are █; a
// fractional trailing cell is ▒ below one half and ▓ at or above it; the rest
// is padded with ░. It also returns the percentage.
func Bar(value, max float64, barLength int) (string, float64, error) {
	frac := value / max
	if frac > 1 {
		return "", 0, ErrOverflow
	}
	if frac < 0 {
		frac = 0
	}

	percentage := frac * 100
	filled := frac * float64(barLength)

	// At least one filled cell, fractional amounts round the solid run up.
	whole := int(math.Ceil(filled))
	if whole < 1 {
		whole = 1
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("█", whole))

	remainder := math.Mod(filled, 1)
	if remainder != 0 && whole < barLength {
		if remainder < 0.5 {
			b.WriteString("▒")
		} else {
			b.WriteString("▓")
		}
	}

	cells := len([]rune(b.String()))
	if cells < barLength {
		b.WriteString(strings.Repeat("░", barLength-cells))
	}

	return b.String(), percentage, nil
}

// Year reports how far now is through its UTC calendar year: the rendered
// bar, the elapsed percentage and the remaining percentage.
func Year(now time.Time) (string, float64, float64, error) {
	now = now.UTC()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	total := end.Sub(start).Seconds()
	elapsed := now.Sub(start).Seconds()

	bar, pct, err := Bar(elapsed, total, DefaultBarLength)
	if err != nil {
		return "", 0, 0, err
	}
	return bar, pct, 100 - pct, nil
}
