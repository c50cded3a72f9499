package main

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// getMeals returns the day's meals, each with its foods in insertion order.
// GET /api/meals?date=YYYY-MM-DD. date is required.
func (h *Handler) getMeals(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.Query("date")

	if date == "" {
		apiError(c, http.StatusBadRequest, "date parameter required")
		return
	}
	// An invalid date would silently match no rows.
	if _, err := time.Parse(dateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	meals, err := h.store.listMeals(c, userID, date)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch meals")
		return
	}
	// Ensure meals is an empty array (not null) in JSON
	if meals == nil {
		meals = []meal{}
	}

	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

// createMeal inserts an empty meal for the given day.
// POST /api/meals.
func (h *Handler) createMeal(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body createMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "name and date required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		apiError(c, http.StatusBadRequest, "name and date required")
		return
	}
	if _, err := time.Parse(dateLayout, body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	m, err := h.store.createMeal(c, userID, body.Name, body.Date)
	if err != nil {
		log.Printf("[createMeal] insert failed for user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to create meal")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"meal": m})
}

// deleteMeal removes a meal and, by cascade, its foods.
// DELETE /api/meals/:mealId. 404 when the meal is missing or not the caller's.
func (h *Handler) deleteMeal(c *gin.Context) {
	userID := c.GetInt("user_id")
	mealID, ok := intParam(c, "mealId")
	if !ok {
		return
	}

	err := h.store.deleteMeal(c, userID, mealID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete meal")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "meal deleted"})
}

// addFood appends a food entry to a meal. Absent macros are stored as NULL.
// POST /api/meals/:mealId/foods.
func (h *Handler) addFood(c *gin.Context) {
	userID := c.GetInt("user_id")
	mealID, ok := intParam(c, "mealId")
	if !ok {
		return
	}

	var body addFoodRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "foodId and foodName required")
		return
	}
	for _, v := range []*float64{body.Calories, body.Protein, body.Carbs, body.Fat} {
		if v != nil && *v < 0 {
			apiError(c, http.StatusBadRequest, "nutrient values must not be negative")
			return
		}
	}

	f, err := h.store.addFood(c, userID, mealID, body)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "meal not found")
		return
	}
	if err != nil {
		log.Printf("[addFood] insert failed for meal %d: %v", mealID, err)
		apiError(c, http.StatusInternalServerError, "failed to add food")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"food": f})
}

// deleteFood removes one food entry from a meal.
// DELETE /api/meals/:mealId/foods/:foodRecordId.
func (h *Handler) deleteFood(c *gin.Context) {
	userID := c.GetInt("user_id")
	mealID, ok := intParam(c, "mealId")
	if !ok {
		return
	}
	recordID, ok := intParam(c, "foodRecordId")
	if !ok {
		return
	}

	err := h.store.deleteFood(c, userID, mealID, recordID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "food not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete food")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "food deleted"})
}
