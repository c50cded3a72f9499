package main

import "math"

const (
	kgPerLb = 0.453592
	cmPerIn = 2.54

	// defaultActivityMultiplier is the sedentary multiplier, used when the
	// activity level is missing or unrecognised.
	defaultActivityMultiplier = 1.2
)

// otherGenderOffset is the BMR constant used for "other" and any unrecognised
// gender. It is the midpoint of the male (+5) and female (-161) offsets: a
// policy constant kept for compatibility, not a validated physiological formula.
const otherGenderOffset = -78

// activityMultipliers maps activity level strings to their TDEE multiplier.
// validate.go also uses its keys as the set of valid activity levels.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// genderOffsets holds the Mifflin-St Jeor constant per gender. Valid genders are
// the keys plus "other", which deliberately falls through to otherGenderOffset.
var genderOffsets = map[string]float64{
	"male":   5,
	"female": -161,
}

// computeBMR computes basal metabolic rate (kcal/day) via Mifflin-St Jeor from
// imperial inputs. Unknown genders use otherGenderOffset rather than failing.
func computeBMR(gender string, weightLbs, heightInches float64, age int) float64 {
	weightKg := weightLbs * kgPerLb
	heightCm := heightInches * cmPerIn

	offset, ok := genderOffsets[gender]
	if !ok {
		offset = otherGenderOffset
	}
	return 10*weightKg + 6.25*heightCm - 5*float64(age) + offset
}

// computeTDEE scales bmr by the activity multiplier and rounds to whole kcal.
// An unrecognised or empty level uses the sedentary multiplier.
func computeTDEE(bmr float64, activityLevel string) int {
	mult, found := activityMultipliers[activityLevel]
	if !found {
		mult = defaultActivityMultiplier
	}
	return int(math.Round(bmr * mult))
}

// maintenanceCalories is computeTDEE(computeBMR(...)) over a validated body.
func maintenanceCalories(b bodyStats) int {
	bmr := computeBMR(b.Gender, b.WeightLbs, b.HeightInches, b.Age)
	return computeTDEE(bmr, b.ActivityLevel)
}
