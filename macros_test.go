package main

import (
	"math"
	"testing"
)

func TestComputeMacroGrams(t *testing.T) {
	cases := []struct {
		name                string
		calories            int
		protein, carbs, fat int
		want                macroGrams
	}{
		{"reference 30/40/30", 2802, 30, 40, 30, macroGrams{210, 280, 93}},
		{"high protein 40/30/30", 2000, 40, 30, 30, macroGrams{200, 150, 67}},
		{"all fat", 1800, 0, 0, 100, macroGrams{0, 0, 200}},
		{"zero budget", 0, 30, 40, 30, macroGrams{0, 0, 0}},
		{"partial split", 2000, 25, 0, 0, macroGrams{125, 0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeMacroGrams(tc.calories, tc.protein, tc.carbs, tc.fat)
			if got != tc.want {
				t.Errorf("computeMacroGrams(%d, %d/%d/%d) = %+v, want %+v",
					tc.calories, tc.protein, tc.carbs, tc.fat, got, tc.want)
			}
		})
	}
}

// TestComputeMacroGrams_EnergyRoundTrip converts the grams back to kcal. Each
// macro's rounding can move energy by at most half a gram's worth.
func TestComputeMacroGrams_EnergyRoundTrip(t *testing.T) {
	splits := [][3]int{{30, 40, 30}, {20, 50, 30}, {35, 35, 30}, {10, 60, 30}}
	budgets := []int{1200, 1843, 2802, 3517}

	maxDrift := 0.5*proteinKcalPerGram + 0.5*carbsKcalPerGram + 0.5*fatKcalPerGram
	for _, s := range splits {
		for _, cal := range budgets {
			g := computeMacroGrams(cal, s[0], s[1], s[2])
			energy := g.ProteinGrams*proteinKcalPerGram + g.CarbsGrams*carbsKcalPerGram + g.FatGrams*fatKcalPerGram
			if drift := math.Abs(float64(energy - cal)); drift > maxDrift {
				t.Errorf("split %v at %d kcal: grams %+v carry %d kcal (drift %.1f)", s, cal, g, energy, drift)
			}
		}
	}
}
