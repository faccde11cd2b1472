package sim

import (
	"errors"
	"testing"
	"time"
)

func TestParseProfile(t *testing.T) {
	tests := []struct {
		profile string
		costs   []time.Duration
	}{
		{"1", []time.Duration{BaseBandCost}},
		{"1,1", []time.Duration{BaseBandCost, BaseBandCost}},
		{" 1, 2.5 ,0.5", []time.Duration{BaseBandCost, 625 * time.Microsecond, 125 * time.Microsecond}},
	}
	for _, tt := range tests {
		specs, err := ParseProfile(tt.profile)
		if err != nil {
			t.Fatalf("ParseProfile(%q) error = %v", tt.profile, err)
		}
		if len(specs) != len(tt.costs) {
			t.Fatalf("ParseProfile(%q) = %d devices, want %d", tt.profile, len(specs), len(tt.costs))
		}
		for i, s := range specs {
			if s.BandCost != tt.costs[i] {
				t.Errorf("ParseProfile(%q)[%d].BandCost = %v, want %v", tt.profile, i, s.BandCost, tt.costs[i])
			}
			if s.Name == "" {
				t.Errorf("ParseProfile(%q)[%d] has no name", tt.profile, i)
			}
		}
	}
}

func TestParseProfileErrors(t *testing.T) {
	for _, profile := range []string{"", "  ", "1,,2", "fast", "1,0", "-1"} {
		if _, err := ParseProfile(profile); !errors.Is(err, ErrBadProfile) {
			t.Errorf("ParseProfile(%q) error = %v, want ErrBadProfile", profile, err)
		}
	}
}
