package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const maxWeightLbs = 9999.9

// getWeightLog returns weigh-ins for the authenticated user within [start, end].
// GET /api/weight-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
// Returns an empty array (not null) if no entries exist in the range.
func (h *Handler) getWeightLog(c *gin.Context) {
	userID := c.GetInt("user_id")
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	entries, err := h.store.listWeightEntries(c, userID, start, end)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to fetch weight log")
		return
	}
	// Ensure empty array (not null) in JSON
	if entries == nil {
		entries = []weightEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

// upsertWeightEntry creates or updates the weigh-in for the given date.
// POST /api/weight-log. Body: { "date": "YYYY-MM-DD", "weightLbs": 185.5 }.
// When the entry is the user's most recent weigh-in and onboarding is done, the
// profile weight is patched too, which recomputes maintenance calories.
func (h *Handler) upsertWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")

	var body struct {
		Date      string  `json:"date"`
		WeightLbs float64 `json:"weightLbs"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if _, err := time.Parse(dateLayout, body.Date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if body.WeightLbs <= 0 || body.WeightLbs > maxWeightLbs {
		apiError(c, http.StatusBadRequest, "weightLbs must be between 0 and 9999.9")
		return
	}

	entry, latest, err := h.store.upsertWeightEntry(c, userID, body.Date, body.WeightLbs)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to upsert weight entry")
		return
	}

	resp := gin.H{"entry": entry, "profile": nil}
	if latest {
		p, err := h.store.updateProfile(c, userID, profilePatch{WeightLbs: &body.WeightLbs})
		switch {
		case errors.Is(err, errNotOnboarded):
			// Nothing to recompute until the survey is complete.
		case err != nil:
			log.Printf("[upsertWeightEntry] profile sync failed for user %d: %v", userID, err)
		default:
			p.populateMacroGrams()
			resp["profile"] = p
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// deleteWeightEntry removes a weigh-in by ID.
// DELETE /api/weight-log/:id. Returns 204 on success, 404 if not found.
// Ownership is enforced by requiring both id and user_id to match.
func (h *Handler) deleteWeightEntry(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, ok := intParam(c, "id")
	if !ok {
		return
	}

	err := h.store.deleteWeightEntry(c, userID, id)
	if errors.Is(err, errNotFound) {
		apiError(c, http.StatusNotFound, "weight entry not found")
		return
	}
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to delete weight entry")
		return
	}

	c.Status(http.StatusNoContent)
}
