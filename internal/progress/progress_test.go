package progress

import (
	"strings"
	"testing"
	"time"
)

func TestBar_Length(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		max   float64
	}{
		{"start of range", 0, 100},
		{"quarter", 25, 100},
		{"awkward fraction", 33.3, 100},
		{"half", 50, 100},
		{"almost done", 99.9, 100},
		{"complete", 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, _, err := Bar(tt.value, tt.max, DefaultBarLength)
			if err != nil {
				t.Fatal(err)
			}
			if n := len([]rune(bar)); n != DefaultBarLength {
				t.Errorf("bar %q has %d cells, want %d", bar, n, DefaultBarLength)
			}
		})
	}
}

func TestBar_Overflow(t *testing.T) {
	if _, _, err := Bar(101, 100, DefaultBarLength); err == nil {
		t.Fatal("expected error for value > max")
	}
}

func TestBar_Percentage(t *testing.T) {
	_, pct, err := Bar(25, 100, DefaultBarLength)
	if err != nil {
		t.Fatal(err)
	}
	if pct != 25 {
		t.Errorf("percentage = %v, want 25", pct)
	}
}

func TestBar_PartialCells(t *testing.T) {
	// 31.5% of 20 cells = 6.3: solid run rounds up, then a light shade.
	bar, _, err := Bar(31.5, 100, DefaultBarLength)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(bar, "▒") {
		t.Errorf("expected ▒ partial cell in %q", bar)
	}

	// 33.5% of 20 cells = 6.7: remainder at or above one half uses the dark shade.
	bar, _, err = Bar(33.5, 100, DefaultBarLength)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(bar, "▓") {
		t.Errorf("expected ▓ partial cell in %q", bar)
	}
}

func TestBar_CompleteIsAllSolid(t *testing.T) {
	bar, pct, err := Bar(100, 100, DefaultBarLength)
	if err != nil {
		t.Fatal(err)
	}
	if bar != strings.Repeat("█", DefaultBarLength) {
		t.Errorf("full bar = %q", bar)
	}
	if pct != 100 {
		t.Errorf("pct = %v, want 100", pct)
	}
}

func TestYear(t *testing.T) {
	// Mid-year, fixed instant: 2 July 2026 00:00 UTC, day 183 of 365.
	now := time.Date(2026, time.July, 2, 0, 0, 0, 0, time.UTC)
	bar, pct, remaining, err := Year(now)
	if err != nil {
		t.Fatal(err)
	}
	if n := len([]rune(bar)); n != DefaultBarLength {
		t.Errorf("bar has %d cells, want %d", n, DefaultBarLength)
	}
	if pct < 49 || pct > 51 {
		t.Errorf("pct = %v, want ~50", pct)
	}
	if got := pct + remaining; got < 99.999 || got > 100.001 {
		t.Errorf("pct+remaining = %v, want 100", got)
	}
}

func TestYear_StartOfYear(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	bar, pct, _, err := Year(now)
	if err != nil {
		t.Fatal(err)
	}
	if pct != 0 {
		t.Errorf("pct = %v, want 0", pct)
	}
	if n := len([]rune(bar)); n != DefaultBarLength {
		t.Errorf("bar has %d cells, want %d", n, DefaultBarLength)
	}
}
