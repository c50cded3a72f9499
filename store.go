package main

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// store is everything the handlers need from persistence. pgStore is the
// production implementation; tests use an in-memory fake.
type store interface {
	createUser(ctx context.Context, email, passwordHash string) (user, error)
	getUserByEmail(ctx context.Context, email string) (user, error)
	getUserByID(ctx context.Context, id int) (user, error)

	getProfile(ctx context.Context, userID int) (userProfile, error)
	saveOnboarding(ctx context.Context, userID int, in onboardingInput, maintenance int) (userProfile, error)
	updateProfile(ctx context.Context, userID int, p profilePatch) (userProfile, error)

	listMeals(ctx context.Context, userID int, date string) ([]meal, error)
	createMeal(ctx context.Context, userID int, name, date string) (meal, error)
	deleteMeal(ctx context.Context, userID, mealID int) error
	addFood(ctx context.Context, userID, mealID int, f addFoodRequest) (foodEntry, error)
	deleteFood(ctx context.Context, userID, mealID, recordID int) error
	foodsForDay(ctx context.Context, userID int, date string) ([]foodEntry, error)
	dailyTotals(ctx context.Context, userID int, start, end string) ([]dayTotalsRow, error)

	listWeightEntries(ctx context.Context, userID int, start, end string) ([]weightEntry, error)
	upsertWeightEntry(ctx context.Context, userID int, date string, weightLbs float64) (entry weightEntry, latest bool, err error)
	deleteWeightEntry(ctx context.Context, userID, id int) error
}

// pgStore implements store on a pgx connection pool.
type pgStore struct {
	db *pgxpool.Pool
}

func newPGStore(db *pgxpool.Pool) *pgStore {
	return &pgStore{db: db}
}

/* ─── Query helpers ───────────────────────────────────────────────────── */

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
// pgx.ErrNoRows is returned as errNotFound.
func queryOne[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return result, errNotFound
	}
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, q querier, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := q.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

/* ─── Users ───────────────────────────────────────────────────────────── */

// createUser inserts the user and its empty profile in one transaction.
func (s *pgStore) createUser(ctx context.Context, email, passwordHash string) (user, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return user{}, err
	}
	defer tx.Rollback(ctx)

	u, err := queryOne[user](ctx, tx,
		`INSERT INTO users (email, password_hash) VALUES (@email, @passwordHash) RETURNING *`,
		pgx.NamedArgs{"email": email, "passwordHash": passwordHash})
	if err != nil {
		if isUniqueViolation(err) {
			return user{}, errEmailTaken
		}
		return user{}, err
	}

	if _, err := tx.Exec(ctx,
		"INSERT INTO user_profiles (user_id, onboarding_completed) VALUES (@userID, FALSE)",
		pgx.NamedArgs{"userID": u.ID}); err != nil {
		return user{}, err
	}

	return u, tx.Commit(ctx)
}

func (s *pgStore) getUserByEmail(ctx context.Context, email string) (user, error) {
	return queryOne[user](ctx, s.db,
		"SELECT * FROM users WHERE email = @email", pgx.NamedArgs{"email": email})
}

func (s *pgStore) getUserByID(ctx context.Context, id int) (user, error) {
	return queryOne[user](ctx, s.db,
		"SELECT * FROM users WHERE id = @id", pgx.NamedArgs{"id": id})
}

/* ─── Profiles ────────────────────────────────────────────────────────── */

func (s *pgStore) getProfile(ctx context.Context, userID int) (userProfile, error) {
	return queryOne[userProfile](ctx, s.db,
		"SELECT * FROM user_profiles WHERE user_id = @userID", pgx.NamedArgs{"userID": userID})
}

func (s *pgStore) saveOnboarding(ctx context.Context, userID int, in onboardingInput, maintenance int) (userProfile, error) {
	return queryOne[userProfile](ctx, s.db,
		`UPDATE user_profiles SET
			age = @age, gender = @gender, weight_lbs = @weightLbs, height_inches = @heightInches,
			activity_level = @activityLevel, maintenance_calories = @maintenance,
			protein_percentage = @protein, carbs_percentage = @carbs, fat_percentage = @fat,
			onboarding_completed = TRUE, updated_at = now()
		 WHERE user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"userID": userID, "age": in.Body.Age, "gender": in.Body.Gender,
			"weightLbs": in.Body.WeightLbs, "heightInches": in.Body.HeightInches,
			"activityLevel": in.Body.ActivityLevel, "maintenance": maintenance,
			"protein": in.Split.ProteinPct, "carbs": in.Split.CarbsPct, "fat": in.Split.FatPct,
		})
}

// updateProfile applies only the fields present in p. The patch is resolved
// against the row read in the same transaction, so maintenance_calories is
// recomputed from the merged stats whenever a body field changes. Concurrent
// updates are last-write-wins.
func (s *pgStore) updateProfile(ctx context.Context, userID int, p profilePatch) (userProfile, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return userProfile{}, err
	}
	defer tx.Rollback(ctx)

	current, err := queryOne[userProfile](ctx, tx,
		"SELECT * FROM user_profiles WHERE user_id = @userID", pgx.NamedArgs{"userID": userID})
	if err != nil {
		return userProfile{}, err
	}

	p, err = resolveProfilePatch(current, p)
	if err != nil {
		return userProfile{}, err
	}

	// Only fields present in the patch are written.
	setClauses := []string{"updated_at = now()"}
	args := pgx.NamedArgs{"userID": userID}
	set := func(column, name string, value any) {
		setClauses = append(setClauses, column+" = @"+name)
		args[name] = value
	}
	if p.Age != nil {
		set("age", "age", *p.Age)
	}
	if p.Gender != nil {
		set("gender", "gender", *p.Gender)
	}
	if p.WeightLbs != nil {
		set("weight_lbs", "weightLbs", *p.WeightLbs)
	}
	if p.HeightInches != nil {
		set("height_inches", "heightInches", *p.HeightInches)
	}
	if p.ActivityLevel != nil {
		set("activity_level", "activityLevel", *p.ActivityLevel)
	}
	if p.MaintenanceCalories != nil {
		set("maintenance_calories", "maintenance", *p.MaintenanceCalories)
	}
	if p.ProteinPercentage != nil {
		set("protein_percentage", "protein", *p.ProteinPercentage)
	}
	if p.CarbsPercentage != nil {
		set("carbs_percentage", "carbs", *p.CarbsPercentage)
	}
	if p.FatPercentage != nil {
		set("fat_percentage", "fat", *p.FatPercentage)
	}

	query := "UPDATE user_profiles SET " +
		strings.Join(setClauses, ", ") +
		" WHERE user_id = @userID RETURNING *"

	updated, err := queryOne[userProfile](ctx, tx, query, args)
	if err != nil {
		return userProfile{}, err
	}
	return updated, tx.Commit(ctx)
}

/* ─── Meals ───────────────────────────────────────────────────────────── */

// listMeals returns the user's meals for date, oldest first, each with its
// foods in insertion order.
func (s *pgStore) listMeals(ctx context.Context, userID int, date string) ([]meal, error) {
	meals, err := queryMany[meal](ctx, s.db,
		`SELECT * FROM meals
		 WHERE user_id = @userID AND meal_date = @date
		 ORDER BY created_at, id`,
		pgx.NamedArgs{"userID": userID, "date": date})
	if err != nil {
		return nil, err
	}

	foods, err := s.foodsForDay(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	byMeal := make(map[int][]foodEntry, len(meals))
	for _, f := range foods {
		byMeal[f.MealID] = append(byMeal[f.MealID], f)
	}
	for i := range meals {
		meals[i].Foods = byMeal[meals[i].ID]
		if meals[i].Foods == nil {
			meals[i].Foods = []foodEntry{}
		}
	}
	return meals, nil
}

func (s *pgStore) createMeal(ctx context.Context, userID int, name, date string) (meal, error) {
	m, err := queryOne[meal](ctx, s.db,
		`INSERT INTO meals (user_id, name, meal_date)
		 VALUES (@userID, @name, @date)
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "name": name, "date": date})
	m.Foods = []foodEntry{}
	return m, err
}

// deleteMeal removes a meal owned by userID; meal_foods cascade.
func (s *pgStore) deleteMeal(ctx context.Context, userID, mealID int) error {
	result, err := s.db.Exec(ctx,
		"DELETE FROM meals WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": mealID, "userID": userID})
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

// addFood inserts a food only if the meal belongs to userID; otherwise the
// INSERT ... SELECT produces no row and errNotFound is returned.
func (s *pgStore) addFood(ctx context.Context, userID, mealID int, f addFoodRequest) (foodEntry, error) {
	calories := 0.0
	if f.Calories != nil {
		calories = *f.Calories
	}
	return queryOne[foodEntry](ctx, s.db,
		`INSERT INTO meal_foods (meal_id, food_id, food_name, calories, protein, carbs, fat)
		 SELECT m.id, @foodID, @foodName, @calories, @protein, @carbs, @fat
		 FROM meals m WHERE m.id = @mealID AND m.user_id = @userID
		 RETURNING *`,
		pgx.NamedArgs{
			"mealID": mealID, "userID": userID, "foodID": f.FoodID, "foodName": f.FoodName,
			"calories": calories, "protein": f.Protein, "carbs": f.Carbs, "fat": f.Fat,
		})
}

func (s *pgStore) deleteFood(ctx context.Context, userID, mealID, recordID int) error {
	result, err := s.db.Exec(ctx,
		`DELETE FROM meal_foods f USING meals m
		 WHERE f.id = @recordID AND f.meal_id = @mealID
		   AND m.id = f.meal_id AND m.user_id = @userID`,
		pgx.NamedArgs{"recordID": recordID, "mealID": mealID, "userID": userID})
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}

func (s *pgStore) foodsForDay(ctx context.Context, userID int, date string) ([]foodEntry, error) {
	return queryMany[foodEntry](ctx, s.db,
		`SELECT f.* FROM meal_foods f
		 JOIN meals m ON m.id = f.meal_id
		 WHERE m.user_id = @userID AND m.meal_date = @date
		 ORDER BY f.id`,
		pgx.NamedArgs{"userID": userID, "date": date})
}

// dailyTotals sums foods per day across [start, end]. NULL macros count as 0.
func (s *pgStore) dailyTotals(ctx context.Context, userID int, start, end string) ([]dayTotalsRow, error) {
	return queryMany[dayTotalsRow](ctx, s.db,
		`SELECT
			m.meal_date,
			COALESCE(SUM(f.calories), 0) AS calories,
			COALESCE(SUM(f.protein),  0) AS protein,
			COALESCE(SUM(f.carbs),    0) AS carbs,
			COALESCE(SUM(f.fat),      0) AS fat
		 FROM meal_foods f
		 JOIN meals m ON m.id = f.meal_id
		 WHERE m.user_id = @userID AND m.meal_date >= @start AND m.meal_date <= @end
		 GROUP BY m.meal_date
		 ORDER BY m.meal_date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

/* ─── Weight log ──────────────────────────────────────────────────────── */

func (s *pgStore) listWeightEntries(ctx context.Context, userID int, start, end string) ([]weightEntry, error) {
	return queryMany[weightEntry](ctx, s.db,
		`SELECT * FROM weight_log
		 WHERE user_id = @userID AND date >= @start AND date <= @end
		 ORDER BY date ASC`,
		pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

// upsertWeightEntry creates or replaces the entry for date. latest reports
// whether no later weigh-in exists for the user.
func (s *pgStore) upsertWeightEntry(ctx context.Context, userID int, date string, weightLbs float64) (weightEntry, bool, error) {
	entry, err := queryOne[weightEntry](ctx, s.db,
		`INSERT INTO weight_log (user_id, date, weight_lbs)
		 VALUES (@userID, @date, @weightLbs)
		 ON CONFLICT (user_id, date) DO UPDATE SET weight_lbs = EXCLUDED.weight_lbs
		 RETURNING *`,
		pgx.NamedArgs{"userID": userID, "date": date, "weightLbs": weightLbs})
	if err != nil {
		return weightEntry{}, false, err
	}

	var latest bool
	err = s.db.QueryRow(ctx,
		"SELECT NOT EXISTS (SELECT 1 FROM weight_log WHERE user_id = @userID AND date > @date)",
		pgx.NamedArgs{"userID": userID, "date": date}).Scan(&latest)
	if err != nil {
		return entry, false, err
	}
	return entry, latest, nil
}

func (s *pgStore) deleteWeightEntry(ctx context.Context, userID, id int) error {
	result, err := s.db.Exec(ctx,
		"DELETE FROM weight_log WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": id, "userID": userID})
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}
