package main

import (
	"errors"
	"fmt"
)

// validGenders is the set of accepted gender values. "other" is accepted and
// uses the averaged BMR offset in tdee.go.
var validGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

// bodyStats are the five inputs the Energy Model depends on.
type bodyStats struct {
	Age           int
	Gender        string
	WeightLbs     float64
	HeightInches  float64
	ActivityLevel string
}

// macroSplit is a validated percentage split summing to 100.
type macroSplit struct {
	ProteinPct int
	CarbsPct   int
	FatPct     int
}

// onboardingInput is a fully validated onboarding submission.
type onboardingInput struct {
	Body  bodyStats
	Split macroSplit
}

// profilePatch carries only the fields an update supplied. MaintenanceCalories
// is never taken from clients; resolveProfilePatch sets it whenever a body
// field is present.
type profilePatch struct {
	Age                 *int
	Gender              *string
	WeightLbs           *float64
	HeightInches        *float64
	ActivityLevel       *string
	ProteinPercentage   *int
	CarbsPercentage     *int
	FatPercentage       *int
	MaintenanceCalories *int
}

func (p profilePatch) touchesBody() bool {
	return p.Age != nil || p.Gender != nil || p.WeightLbs != nil ||
		p.HeightInches != nil || p.ActivityLevel != nil
}

func (p profilePatch) touchesSplit() bool {
	return p.ProteinPercentage != nil || p.CarbsPercentage != nil || p.FatPercentage != nil
}

func (p profilePatch) empty() bool {
	return !p.touchesBody() && !p.touchesSplit()
}

/* ─── Field checks ───────────────────────────────────────────────────── */

func checkAge(v int) error {
	if v <= 0 {
		return errors.New("age must be a positive integer")
	}
	return nil
}

func checkGender(v string) error {
	if !validGenders[v] {
		return errors.New("gender must be one of: male, female, other")
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

func checkActivityLevel(v string) error {
	if _, ok := activityMultipliers[v]; !ok {
		return errors.New("activityLevel must be one of: sedentary, light, moderate, active, very_active")
	}
	return nil
}

func checkPercentage(name string, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s must be between 0 and 100", name)
	}
	return nil
}

func checkSplit(protein, carbs, fat int) error {
	if protein+carbs+fat != 100 {
		return errMacroSplit
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

/* ─── Request validation ─────────────────────────────────────────────── */

// validateOnboarding requires every field and rejects the request before the
// Energy Model or Macro Allocator runs.
func validateOnboarding(req profileRequest) (onboardingInput, error) {
	if req.Age == nil || req.Gender == nil || req.WeightLbs == nil ||
		req.HeightInches == nil || req.ActivityLevel == nil {
		return onboardingInput{}, errors.New("age, gender, weightLbs, heightInches and activityLevel are required")
	}
	if req.ProteinPercentage == nil || req.CarbsPercentage == nil || req.FatPercentage == nil {
		return onboardingInput{}, errMacroSplit
	}

	in := onboardingInput{
		Body: bodyStats{
			Age:           *req.Age,
			Gender:        *req.Gender,
			WeightLbs:     *req.WeightLbs,
			HeightInches:  *req.HeightInches,
			ActivityLevel: *req.ActivityLevel,
		},
		Split: macroSplit{
			ProteinPct: *req.ProteinPercentage,
			CarbsPct:   *req.CarbsPercentage,
			FatPct:     *req.FatPercentage,
		},
	}
	err := firstErr(
		checkAge(in.Body.Age),
		checkGender(in.Body.Gender),
		checkPositive("weightLbs", in.Body.WeightLbs),
		checkPositive("heightInches", in.Body.HeightInches),
		checkActivityLevel(in.Body.ActivityLevel),
		checkPercentage("proteinPercentage", in.Split.ProteinPct),
		checkPercentage("carbsPercentage", in.Split.CarbsPct),
		checkPercentage("fatPercentage", in.Split.FatPct),
		checkSplit(in.Split.ProteinPct, in.Split.CarbsPct, in.Split.FatPct),
	)
	if err != nil {
		return onboardingInput{}, err
	}
	return in, nil
}

// validatePatch checks each supplied field on its own. The merged percentage
// sum is checked against the stored profile in resolveProfilePatch.
func validatePatch(req profileRequest) (profilePatch, error) {
	p := profilePatch{
		Age:               req.Age,
		Gender:            req.Gender,
		WeightLbs:         req.WeightLbs,
		HeightInches:      req.HeightInches,
		ActivityLevel:     req.ActivityLevel,
		ProteinPercentage: req.ProteinPercentage,
		CarbsPercentage:   req.CarbsPercentage,
		FatPercentage:     req.FatPercentage,
	}

	var errs []error
	if p.Age != nil {
		errs = append(errs, checkAge(*p.Age))
	}
	if p.Gender != nil {
		errs = append(errs, checkGender(*p.Gender))
	}
	if p.WeightLbs != nil {
		errs = append(errs, checkPositive("weightLbs", *p.WeightLbs))
	}
	if p.HeightInches != nil {
		errs = append(errs, checkPositive("heightInches", *p.HeightInches))
	}
	if p.ActivityLevel != nil {
		errs = append(errs, checkActivityLevel(*p.ActivityLevel))
	}
	if p.ProteinPercentage != nil {
		errs = append(errs, checkPercentage("proteinPercentage", *p.ProteinPercentage))
	}
	if p.CarbsPercentage != nil {
		errs = append(errs, checkPercentage("carbsPercentage", *p.CarbsPercentage))
	}
	if p.FatPercentage != nil {
		errs = append(errs, checkPercentage("fatPercentage", *p.FatPercentage))
	}
	if err := firstErr(errs...); err != nil {
		return profilePatch{}, err
	}
	return p, nil
}

// resolveProfilePatch merges p over the stored profile. When any body field is
// present it recomputes MaintenanceCalories from the merged stats, so the stored
// budget never reflects stale inputs. The merged split must sum to 100.
func resolveProfilePatch(current userProfile, p profilePatch) (profilePatch, error) {
	if p.touchesBody() {
		merged := current
		if p.Age != nil {
			merged.Age = p.Age
		}
		if p.Gender != nil {
			merged.Gender = p.Gender
		}
		if p.WeightLbs != nil {
			merged.WeightLbs = p.WeightLbs
		}
		if p.HeightInches != nil {
			merged.HeightInches = p.HeightInches
		}
		if p.ActivityLevel != nil {
			merged.ActivityLevel = p.ActivityLevel
		}
		b, ok := merged.body()
		if !ok {
			return profilePatch{}, errNotOnboarded
		}
		m := maintenanceCalories(b)
		p.MaintenanceCalories = &m
	}

	if p.touchesSplit() {
		protein, carbs, fat := current.ProteinPercentage, current.CarbsPercentage, current.FatPercentage
		if p.ProteinPercentage != nil {
			protein = p.ProteinPercentage
		}
		if p.CarbsPercentage != nil {
			carbs = p.CarbsPercentage
		}
		if p.FatPercentage != nil {
			fat = p.FatPercentage
		}
		if protein == nil || carbs == nil || fat == nil {
			return profilePatch{}, errNotOnboarded
		}
		if err := checkSplit(*protein, *carbs, *fat); err != nil {
			return profilePatch{}, err
		}
	}

	return p, nil
}
