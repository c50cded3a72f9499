package main

import (
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

/* ─── Aggregation ─────────────────────────────────────────────────────── */

// loggedFood is the slice of a food entry the aggregator needs. Absent macros
// stay nil here; they only become 0 inside the summation.
type loggedFood struct {
	Calories float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
}

// nutrientTotals is a consumed-so-far figure for the four tracked quantities.
type nutrientTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// dailyGoals is the calorie budget and gram targets derived from a profile.
type dailyGoals struct {
	Calories     int `json:"calories"`
	ProteinGrams int `json:"proteinGrams"`
	CarbsGrams   int `json:"carbsGrams"`
	FatGrams     int `json:"fatGrams"`
}

// progressPercentages holds round(consumed/goal*100) per quantity. A nil entry
// means that goal is zero. Values above 100 are kept as-is.
type progressPercentages struct {
	Calories *int `json:"calories"`
	Protein  *int `json:"protein"`
	Carbs    *int `json:"carbs"`
	Fat      *int `json:"fat"`
}

// dailyProgress is the response shape for GET /api/progress.
// Goals, Percentages and RemainingCalories are nil when no goals are available.
type dailyProgress struct {
	Date              string               `json:"date,omitempty"`
	Consumed          nutrientTotals       `json:"consumed"`
	Goals             *dailyGoals          `json:"goals"`
	Percentages       *progressPercentages `json:"percentages"`
	RemainingCalories *float64             `json:"remainingCalories"`
}

// sumFoods totals a day's foods, counting a missing macro as 0.
func sumFoods(foods []loggedFood) nutrientTotals {
	var t nutrientTotals
	for _, f := range foods {
		t.Calories += f.Calories
		if f.Protein != nil {
			t.Protein += *f.Protein
		}
		if f.Carbs != nil {
			t.Carbs += *f.Carbs
		}
		if f.Fat != nil {
			t.Fat += *f.Fat
		}
	}
	return t
}

// summarize compares a day's logged foods against goals.
func summarize(foods []loggedFood, goals *dailyGoals) dailyProgress {
	return summarizeTotals(sumFoods(foods), goals)
}

// summarizeTotals is summarize over pre-summed totals (e.g. a SQL GROUP BY row).
// A nil goals or a zero calorie goal yields no goals, percentages or remaining.
func summarizeTotals(consumed nutrientTotals, goals *dailyGoals) dailyProgress {
	p := dailyProgress{Consumed: consumed}
	if goals == nil || goals.Calories <= 0 {
		return p
	}

	g := *goals
	remaining := float64(g.Calories) - consumed.Calories
	p.Goals = &g
	p.RemainingCalories = &remaining
	p.Percentages = &progressPercentages{
		Calories: percentOf(consumed.Calories, g.Calories),
		Protein:  percentOf(consumed.Protein, g.ProteinGrams),
		Carbs:    percentOf(consumed.Carbs, g.CarbsGrams),
		Fat:      percentOf(consumed.Fat, g.FatGrams),
	}
	return p
}

func percentOf(consumed float64, goal int) *int {
	if goal <= 0 {
		return nil
	}
	pct := int(math.Round(consumed / float64(goal) * 100))
	return &pct
}

// goalsFor derives daily goals from a profile, or nil when onboarding hasn't
// produced a complete budget yet.
func goalsFor(p userProfile) *dailyGoals {
	if !p.OnboardingCompleted || p.MaintenanceCalories == nil ||
		p.ProteinPercentage == nil || p.CarbsPercentage == nil || p.FatPercentage == nil {
		return nil
	}
	m := computeMacroGrams(*p.MaintenanceCalories, *p.ProteinPercentage, *p.CarbsPercentage, *p.FatPercentage)
	return &dailyGoals{
		Calories:     *p.MaintenanceCalories,
		ProteinGrams: m.ProteinGrams,
		CarbsGrams:   m.CarbsGrams,
		FatGrams:     m.FatGrams,
	}
}

/* ─── Handlers ────────────────────────────────────────────────────────── */

// getProgress returns consumed vs. goal figures for one day.
// GET /api/progress?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getProgress(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format(dateLayout))
	if _, err := time.Parse(dateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	profile, err := h.store.getProfile(c, userID)
	if err != nil && !errors.Is(err, errNotFound) {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	foods, err := h.store.foodsForDay(c, userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch foods")
		return
	}

	logged := make([]loggedFood, len(foods))
	for i, f := range foods {
		logged[i] = f.logged()
	}

	p := summarize(logged, goalsFor(profile))
	p.Date = date
	c.JSON(http.StatusOK, p)
}

// getProgressRange returns per-day progress for days with logged foods in
// [start, end]. No gap-filling; days without data are omitted.
// GET /api/progress/range?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getProgressRange(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	profile, err := h.store.getProfile(c, userID)
	if err != nil && !errors.Is(err, errNotFound) {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}
	goals := goalsFor(profile)

	rows, err := h.store.dailyTotals(c, userID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch progress data")
		return
	}

	days := make([]dailyProgress, 0, len(rows))
	for _, row := range rows {
		p := summarizeTotals(row.totals(), goals)
		p.Date = row.Date.Format(dateLayout)
		days = append(days, p)
	}

	c.JSON(http.StatusOK, gin.H{"days": days})
}
