package main

import "testing"

func f64(v float64) *float64 { return &v }
func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func referenceGoals() *dailyGoals {
	return &dailyGoals{Calories: 2802, ProteinGrams: 210, CarbsGrams: 280, FatGrams: 93}
}

func wantPct(t *testing.T, name string, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Errorf("%s percentage = nil, want %d", name, want)
		return
	}
	if *got != want {
		t.Errorf("%s percentage = %d, want %d", name, *got, want)
	}
}

/* ─── summarize ──────────────────────────────────────────────────────── */

func TestSummarize_NoFoods(t *testing.T) {
	p := summarize(nil, referenceGoals())

	if p.Consumed != (nutrientTotals{}) {
		t.Errorf("consumed = %+v, want zeros", p.Consumed)
	}
	if p.RemainingCalories == nil || *p.RemainingCalories != 2802 {
		t.Errorf("remainingCalories = %v, want 2802", p.RemainingCalories)
	}
	wantPct(t, "calories", p.Percentages.Calories, 0)
	wantPct(t, "fat", p.Percentages.Fat, 0)
}

// TestSummarize_MissingMacroCountsAsZero logs one 500 kcal food with no
// protein value against the reference goals.
func TestSummarize_MissingMacroCountsAsZero(t *testing.T) {
	foods := []loggedFood{{Calories: 500, Carbs: f64(60), Fat: f64(20)}}
	p := summarize(foods, referenceGoals())

	if p.Consumed.Protein != 0 {
		t.Errorf("consumed protein = %v, want 0", p.Consumed.Protein)
	}
	wantPct(t, "calories", p.Percentages.Calories, 18)
	wantPct(t, "protein", p.Percentages.Protein, 0)
	wantPct(t, "carbs", p.Percentages.Carbs, 21)
	wantPct(t, "fat", p.Percentages.Fat, 22)
	if *p.RemainingCalories != 2302 {
		t.Errorf("remainingCalories = %v, want 2302", *p.RemainingCalories)
	}
}

func TestSummarize_SumsAcrossFoods(t *testing.T) {
	foods := []loggedFood{
		{Calories: 250.5, Protein: f64(20), Carbs: f64(10.25)},
		{Calories: 100, Protein: f64(5.5), Fat: f64(3)},
		{Calories: 0},
	}
	p := summarize(foods, nil)

	want := nutrientTotals{Calories: 350.5, Protein: 25.5, Carbs: 10.25, Fat: 3}
	if p.Consumed != want {
		t.Errorf("consumed = %+v, want %+v", p.Consumed, want)
	}
}

// TestSummarize_OverGoalNotClamped verifies percentages above 100 and negative
// remaining calories pass through unchanged.
func TestSummarize_OverGoalNotClamped(t *testing.T) {
	foods := []loggedFood{{Calories: 4203, Protein: f64(420)}}
	p := summarize(foods, referenceGoals())

	wantPct(t, "calories", p.Percentages.Calories, 150)
	wantPct(t, "protein", p.Percentages.Protein, 200)
	if *p.RemainingCalories != -1401 {
		t.Errorf("remainingCalories = %v, want -1401", *p.RemainingCalories)
	}
}

func TestSummarize_NoUsableGoals(t *testing.T) {
	foods := []loggedFood{{Calories: 300, Protein: f64(10)}}
	cases := []struct {
		name  string
		goals *dailyGoals
	}{
		{"nil goals", nil},
		{"zero calorie goal", &dailyGoals{Calories: 0, ProteinGrams: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := summarize(foods, tc.goals)
			if p.Goals != nil || p.Percentages != nil || p.RemainingCalories != nil {
				t.Errorf("expected no goals/percentages/remaining, got %+v", p)
			}
			if p.Consumed.Calories != 300 {
				t.Errorf("consumed calories = %v, want 300", p.Consumed.Calories)
			}
		})
	}
}

// TestSummarize_ZeroMacroGoal verifies a zero gram target nulls only that
// macro's percentage.
func TestSummarize_ZeroMacroGoal(t *testing.T) {
	goals := &dailyGoals{Calories: 2000, ProteinGrams: 150, CarbsGrams: 0, FatGrams: 67}
	p := summarize([]loggedFood{{Calories: 1000, Carbs: f64(5)}}, goals)

	if p.Percentages.Carbs != nil {
		t.Errorf("carbs percentage = %d, want nil", *p.Percentages.Carbs)
	}
	wantPct(t, "calories", p.Percentages.Calories, 50)
}

/* ─── goalsFor ───────────────────────────────────────────────────────── */

func onboardedProfile() userProfile {
	return userProfile{
		ID:                  1,
		UserID:              1,
		Age:                 intp(25),
		Gender:              strp("male"),
		WeightLbs:           f64(180),
		HeightInches:        f64(70),
		ActivityLevel:       strp("moderate"),
		MaintenanceCalories: intp(2802),
		ProteinPercentage:   intp(30),
		CarbsPercentage:     intp(40),
		FatPercentage:       intp(30),
		OnboardingCompleted: true,
	}
}

func TestGoalsFor(t *testing.T) {
	g := goalsFor(onboardedProfile())
	if g == nil || *g != *referenceGoals() {
		t.Fatalf("goalsFor = %+v, want %+v", g, referenceGoals())
	}

	notOnboarded := onboardedProfile()
	notOnboarded.OnboardingCompleted = false
	if g := goalsFor(notOnboarded); g != nil {
		t.Errorf("goalsFor(not onboarded) = %+v, want nil", g)
	}

	if g := goalsFor(userProfile{OnboardingCompleted: true}); g != nil {
		t.Errorf("goalsFor(empty) = %+v, want nil", g)
	}
}

func TestPopulateMacroGrams(t *testing.T) {
	p := onboardedProfile()
	p.populateMacroGrams()
	if p.MacroGrams == nil || *p.MacroGrams != (macroGrams{210, 280, 93}) {
		t.Errorf("MacroGrams = %+v, want {210 280 93}", p.MacroGrams)
	}

	empty := userProfile{}
	empty.populateMacroGrams()
	if empty.MacroGrams != nil {
		t.Errorf("MacroGrams on empty profile = %+v, want nil", empty.MacroGrams)
	}
}
