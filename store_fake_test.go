package main

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory store for handler tests. It mirrors pgStore's
// ownership rules: rows owned by another user behave as missing.
type memStore struct {
	mu       sync.Mutex
	nextID   int
	users    map[int]user
	profiles map[int]userProfile // by user ID
	meals    map[int]meal        // by meal ID, Foods unused
	foods    []foodEntry
	weights  map[int]weightEntry
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int]user{},
		profiles: map[int]userProfile{},
		meals:    map[int]meal{},
		weights:  map[int]weightEntry{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func mustDate(date string) DateOnly {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		panic(err)
	}
	return DateOnly{t}
}

func (s *memStore) createUser(_ context.Context, email, passwordHash string) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return user{}, errEmailTaken
		}
	}
	u := user{ID: s.id(), Email: email, PasswordHash: passwordHash}
	s.users[u.ID] = u
	s.profiles[u.ID] = userProfile{ID: s.id(), UserID: u.ID}
	return u, nil
}

func (s *memStore) getUserByEmail(_ context.Context, email string) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user{}, errNotFound
}

func (s *memStore) getUserByID(_ context.Context, id int) (user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return user{}, errNotFound
	}
	return u, nil
}

func (s *memStore) getProfile(_ context.Context, userID int) (userProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return userProfile{}, errNotFound
	}
	return p, nil
}

func (s *memStore) saveOnboarding(_ context.Context, userID int, in onboardingInput, maintenance int) (userProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return userProfile{}, errNotFound
	}
	b, sp := in.Body, in.Split
	p.Age, p.Gender, p.WeightLbs, p.HeightInches, p.ActivityLevel = &b.Age, &b.Gender, &b.WeightLbs, &b.HeightInches, &b.ActivityLevel
	p.ProteinPercentage, p.CarbsPercentage, p.FatPercentage = &sp.ProteinPct, &sp.CarbsPct, &sp.FatPct
	p.MaintenanceCalories = &maintenance
	p.OnboardingCompleted = true
	s.profiles[userID] = p
	return p, nil
}

func (s *memStore) updateProfile(_ context.Context, userID int, patch profilePatch) (userProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return userProfile{}, errNotFound
	}
	patch, err := resolveProfilePatch(p, patch)
	if err != nil {
		return userProfile{}, err
	}
	if patch.Age != nil {
		p.Age = patch.Age
	}
	if patch.Gender != nil {
		p.Gender = patch.Gender
	}
	if patch.WeightLbs != nil {
		p.WeightLbs = patch.WeightLbs
	}
	if patch.HeightInches != nil {
		p.HeightInches = patch.HeightInches
	}
	if patch.ActivityLevel != nil {
		p.ActivityLevel = patch.ActivityLevel
	}
	if patch.MaintenanceCalories != nil {
		p.MaintenanceCalories = patch.MaintenanceCalories
	}
	if patch.ProteinPercentage != nil {
		p.ProteinPercentage = patch.ProteinPercentage
	}
	if patch.CarbsPercentage != nil {
		p.CarbsPercentage = patch.CarbsPercentage
	}
	if patch.FatPercentage != nil {
		p.FatPercentage = patch.FatPercentage
	}
	s.profiles[userID] = p
	return p, nil
}

func (s *memStore) listMeals(ctx context.Context, userID int, date string) ([]meal, error) {
	foods, _ := s.foodsForDay(ctx, userID, date)

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []meal
	for _, m := range s.meals {
		if m.UserID == userID && m.Date.Format(dateLayout) == date {
			m.Foods = []foodEntry{}
			for _, f := range foods {
				if f.MealID == m.ID {
					m.Foods = append(m.Foods, f)
				}
			}
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) createMeal(_ context.Context, userID int, name, date string) (meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := meal{ID: s.id(), UserID: userID, Name: name, Date: mustDate(date)}
	s.meals[m.ID] = m
	m.Foods = []foodEntry{}
	return m, nil
}

func (s *memStore) ownsMeal(userID, mealID int) bool {
	m, ok := s.meals[mealID]
	return ok && m.UserID == userID
}

func (s *memStore) deleteMeal(_ context.Context, userID, mealID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsMeal(userID, mealID) {
		return errNotFound
	}
	delete(s.meals, mealID)
	kept := s.foods[:0]
	for _, f := range s.foods {
		if f.MealID != mealID {
			kept = append(kept, f)
		}
	}
	s.foods = kept
	return nil
}

func (s *memStore) addFood(_ context.Context, userID, mealID int, req addFoodRequest) (foodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsMeal(userID, mealID) {
		return foodEntry{}, errNotFound
	}
	f := foodEntry{
		RecordID: s.id(), MealID: mealID, FoodID: req.FoodID, Name: req.FoodName,
		Protein: req.Protein, Carbs: req.Carbs, Fat: req.Fat,
	}
	if req.Calories != nil {
		f.Calories = *req.Calories
	}
	s.foods = append(s.foods, f)
	return f, nil
}

func (s *memStore) deleteFood(_ context.Context, userID, mealID, recordID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsMeal(userID, mealID) {
		return errNotFound
	}
	for i, f := range s.foods {
		if f.RecordID == recordID && f.MealID == mealID {
			s.foods = append(s.foods[:i], s.foods[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (s *memStore) foodsForDay(_ context.Context, userID int, date string) ([]foodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []foodEntry
	for _, f := range s.foods {
		m := s.meals[f.MealID]
		if m.UserID == userID && m.Date.Format(dateLayout) == date {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *memStore) dailyTotals(_ context.Context, userID int, start, end string) ([]dayTotalsRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDate := map[string]*dayTotalsRow{}
	for _, f := range s.foods {
		m := s.meals[f.MealID]
		d := m.Date.Format(dateLayout)
		if m.UserID != userID || d < start || d > end {
			continue
		}
		row, ok := byDate[d]
		if !ok {
			row = &dayTotalsRow{Date: m.Date}
			byDate[d] = row
		}
		t := sumFoods([]loggedFood{f.logged()})
		row.Calories += t.Calories
		row.Protein += t.Protein
		row.Carbs += t.Carbs
		row.Fat += t.Fat
	}
	out := make([]dayTotalsRow, 0, len(byDate))
	for _, row := range byDate {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) listWeightEntries(_ context.Context, userID int, start, end string) ([]weightEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []weightEntry
	for _, e := range s.weights {
		d := e.Date.Format(dateLayout)
		if e.UserID == userID && d >= start && d <= end {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date.Time) })
	return out, nil
}

func (s *memStore) upsertWeightEntry(_ context.Context, userID int, date string, weightLbs float64) (weightEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := true
	var entry *weightEntry
	for id, e := range s.weights {
		if e.UserID != userID {
			continue
		}
		d := e.Date.Format(dateLayout)
		if d == date {
			e.WeightLbs = weightLbs
			s.weights[id] = e
			entry = &e
		}
		if d > date {
			latest = false
		}
	}
	if entry == nil {
		e := weightEntry{ID: s.id(), UserID: userID, Date: mustDate(date), WeightLbs: weightLbs}
		s.weights[e.ID] = e
		entry = &e
	}
	return *entry, latest, nil
}

func (s *memStore) deleteWeightEntry(_ context.Context, userID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.weights[id]
	if !ok || e.UserID != userID {
		return errNotFound
	}
	delete(s.weights, id)
	return nil
}
