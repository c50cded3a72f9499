package main

import "math"

// Energy density per gram of each macronutrient.
const (
	proteinKcalPerGram = 4
	carbsKcalPerGram   = 4
	fatKcalPerGram     = 9
)

// macroGrams is the daily gram target for each macronutrient.
type macroGrams struct {
	ProteinGrams int `json:"proteinGrams"`
	CarbsGrams   int `json:"carbsGrams"`
	FatGrams     int `json:"fatGrams"`
}

// computeMacroGrams converts a calorie budget and percentage split into gram
// targets. The split is not validated here (previews may pass a partial one);
// write paths check the sum before persisting.
func computeMacroGrams(maintenanceCalories, proteinPct, carbsPct, fatPct int) macroGrams {
	grams := func(pct int, kcalPerGram float64) int {
		return int(math.Round(float64(maintenanceCalories) * float64(pct) / 100 / kcalPerGram))
	}
	return macroGrams{
		ProteinGrams: grams(proteinPct, proteinKcalPerGram),
		CarbsGrams:   grams(carbsPct, carbsKcalPerGram),
		FatGrams:     grams(fatPct, fatKcalPerGram),
	}
}
