package main

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const dateLayout = "2006-01-02"

// Store-level conditions handlers map to status codes.
var (
	errNotFound     = errors.New("not found")
	errEmailTaken   = errors.New("email already registered")
	errNotOnboarded = errors.New("onboarding not completed")
	errMacroSplit   = errors.New("macro percentages must add up to 100")
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"`+dateLayout+`"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL values zero the time and return nil
// so that *DateOnly pointer fields can be set to nil by pgx's NULL handling.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. PasswordHash is hidden from JSON responses.
type user struct {
	ID           int        `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	CreatedAt    *time.Time `json:"createdAt" db:"created_at"`
}

// userProfile maps to user_profiles. One row per user, created empty at signup,
// so every survey field is nullable until onboarding completes.
type userProfile struct {
	ID                  int        `json:"id"                  db:"id"`
	UserID              int        `json:"userId"              db:"user_id"`
	Age                 *int       `json:"age"                 db:"age"`
	Gender              *string    `json:"gender"              db:"gender"`
	WeightLbs           *float64   `json:"weightLbs"           db:"weight_lbs"`
	HeightInches        *float64   `json:"heightInches"        db:"height_inches"`
	ActivityLevel       *string    `json:"activityLevel"       db:"activity_level"`
	MaintenanceCalories *int       `json:"maintenanceCalories" db:"maintenance_calories"`
	ProteinPercentage   *int       `json:"proteinPercentage"   db:"protein_percentage"`
	CarbsPercentage     *int       `json:"carbsPercentage"     db:"carbs_percentage"`
	FatPercentage       *int       `json:"fatPercentage"       db:"fat_percentage"`
	OnboardingCompleted bool       `json:"onboardingCompleted" db:"onboarding_completed"`
	CreatedAt           *time.Time `json:"createdAt"           db:"created_at"`
	UpdatedAt           *time.Time `json:"updatedAt"           db:"updated_at"`

	// Computed from the stored split; not a column.
	MacroGrams *macroGrams `json:"macroGrams,omitempty" db:"-"`
}

// body returns the stored physical stats, or ok=false if any is missing.
func (p userProfile) body() (bodyStats, bool) {
	if p.Age == nil || p.Gender == nil || p.WeightLbs == nil ||
		p.HeightInches == nil || p.ActivityLevel == nil {
		return bodyStats{}, false
	}
	return bodyStats{
		Age:           *p.Age,
		Gender:        *p.Gender,
		WeightLbs:     *p.WeightLbs,
		HeightInches:  *p.HeightInches,
		ActivityLevel: *p.ActivityLevel,
	}, true
}

// populateMacroGrams fills MacroGrams when the budget and split are present.
func (p *userProfile) populateMacroGrams() {
	if g := goalsFor(*p); g != nil {
		p.MacroGrams = &macroGrams{ProteinGrams: g.ProteinGrams, CarbsGrams: g.CarbsGrams, FatGrams: g.FatGrams}
	}
}

// meal maps to meals. Foods is filled from meal_foods in insertion order.
type meal struct {
	ID        int         `json:"id"        db:"id"`
	UserID    int         `json:"-"         db:"user_id"`
	Name      string      `json:"name"      db:"name"`
	Date      DateOnly    `json:"date"      db:"meal_date"`
	CreatedAt *time.Time  `json:"createdAt" db:"created_at"`
	Foods     []foodEntry `json:"foods"     db:"-"`
}

// foodEntry maps to meal_foods. Nullable macros use pointers so an unknown value
// survives storage and JSON distinct from 0g.
type foodEntry struct {
	RecordID  int        `json:"recordId"          db:"id"`
	MealID    int        `json:"-"                 db:"meal_id"`
	FoodID    int64      `json:"id"                db:"food_id"`
	Name      string     `json:"name"              db:"food_name"`
	Calories  float64    `json:"calories"          db:"calories"`
	Protein   *float64   `json:"protein,omitempty" db:"protein"`
	Carbs     *float64   `json:"carbs,omitempty"   db:"carbs"`
	Fat       *float64   `json:"fat,omitempty"     db:"fat"`
	CreatedAt *time.Time `json:"-"                 db:"created_at"`
}

func (f foodEntry) logged() loggedFood {
	return loggedFood{Calories: f.Calories, Protein: f.Protein, Carbs: f.Carbs, Fat: f.Fat}
}

// dayTotalsRow is the shape of each row returned by the per-day GROUP BY query.
type dayTotalsRow struct {
	Date     DateOnly `db:"meal_date"`
	Calories float64  `db:"calories"`
	Protein  float64  `db:"protein"`
	Carbs    float64  `db:"carbs"`
	Fat      float64  `db:"fat"`
}

func (r dayTotalsRow) totals() nutrientTotals {
	return nutrientTotals{Calories: r.Calories, Protein: r.Protein, Carbs: r.Carbs, Fat: r.Fat}
}

// weightEntry maps to weight_log. UNIQUE(user_id, date).
type weightEntry struct {
	ID        int        `json:"id"        db:"id"`
	UserID    int        `json:"-"         db:"user_id"`
	Date      DateOnly   `json:"date"      db:"date"`
	WeightLbs float64    `json:"weightLbs" db:"weight_lbs"`
	CreatedAt *time.Time `json:"createdAt" db:"created_at"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// authRequest is the request body for signup and login.
type authRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

// profileRequest is the request body for onboarding, preview and update.
// All fields are pointers so "not provided" is distinguishable from zero;
// onboarding requires every field, update applies only the non-nil ones.
type profileRequest struct {
	Age               *int     `json:"age"`
	Gender            *string  `json:"gender"`
	WeightLbs         *float64 `json:"weightLbs"`
	HeightInches      *float64 `json:"heightInches"`
	ActivityLevel     *string  `json:"activityLevel"`
	ProteinPercentage *int     `json:"proteinPercentage"`
	CarbsPercentage   *int     `json:"carbsPercentage"`
	FatPercentage     *int     `json:"fatPercentage"`
}

// createMealRequest is the request body for POST /api/meals.
type createMealRequest struct {
	Name string `json:"name" binding:"required"`
	Date string `json:"date" binding:"required"`
}

// addFoodRequest is the request body for POST /api/meals/:mealId/foods.
// Calories defaults to 0 when omitted; macros stay nil.
type addFoodRequest struct {
	FoodID   int64    `json:"foodId"   binding:"required"`
	FoodName string   `json:"foodName" binding:"required"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
}
