package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getProfile returns the authenticated user's profile. macroGrams is populated
// once onboarding has produced a budget and split.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	p, err := h.store.getProfile(c, userID)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch profile")
		return
	}

	p.populateMacroGrams()
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// completeOnboarding validates the survey, computes maintenance calories and
// marks onboarding complete. Re-submitting overwrites every field.
// POST /api/profile/onboarding.
func (h *Handler) completeOnboarding(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := validateOnboarding(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.store.saveOnboarding(c, userID, in, maintenanceCalories(in.Body))
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		log.Printf("[completeOnboarding] save failed for user %d (request %s): %v", userID, c.GetString("request_id"), err)
		apiError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}

	p.populateMacroGrams()
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// updateProfile applies only the provided fields. Uses pointer fields in the
// request body to distinguish "not provided" from zero. Any physical field
// recomputes maintenanceCalories; percentages must still sum to 100 after
// merging with the stored split.
// PUT /api/profile.
func (h *Handler) updateProfile(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	patch, err := validatePatch(body)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	if patch.empty() {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	p, err := h.store.updateProfile(c, userID, patch)
	switch {
	case errors.Is(err, errMacroSplit):
		apiError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, errNotOnboarded):
		apiError(c, http.StatusConflict, "complete onboarding before updating these fields")
		return
	case errors.Is(err, errNotFound):
		apiError(c, http.StatusNotFound, "profile not found")
		return
	case err != nil:
		log.Printf("[updateProfile] update failed for user %d (request %s): %v", userID, c.GetString("request_id"), err)
		apiError(c, http.StatusInternalServerError, "failed to update profile")
		return
	}

	p.populateMacroGrams()
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// previewProfile computes maintenance calories and macro grams for a
// hypothetical survey without saving anything. The split may be partial.
// POST /api/profile/preview.
func (h *Handler) previewProfile(c *gin.Context) {
	var body profileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Age == nil || body.Gender == nil || body.WeightLbs == nil ||
		body.HeightInches == nil || body.ActivityLevel == nil {
		apiError(c, http.StatusBadRequest, "age, gender, weightLbs, heightInches and activityLevel are required")
		return
	}

	b := bodyStats{
		Age:           *body.Age,
		Gender:        *body.Gender,
		WeightLbs:     *body.WeightLbs,
		HeightInches:  *body.HeightInches,
		ActivityLevel: *body.ActivityLevel,
	}
	if err := firstErr(
		checkAge(b.Age),
		checkGender(b.Gender),
		checkPositive("weightLbs", b.WeightLbs),
		checkPositive("heightInches", b.HeightInches),
		checkActivityLevel(b.ActivityLevel),
	); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	valueOr0 := func(v *int) int {
		if v == nil {
			return 0
		}
		return *v
	}
	protein, carbs, fat := valueOr0(body.ProteinPercentage), valueOr0(body.CarbsPercentage), valueOr0(body.FatPercentage)

	maintenance := maintenanceCalories(b)
	c.JSON(http.StatusOK, gin.H{
		"bmr":                 computeBMR(b.Gender, b.WeightLbs, b.HeightInches, b.Age),
		"maintenanceCalories": maintenance,
		"macroGrams":          computeMacroGrams(maintenance, protein, carbs, fat),
		"percentageTotal":     protein + carbs + fat,
	})
}
