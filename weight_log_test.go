package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

type weightResponse struct {
	Entry   weightEntry  `json:"entry"`
	Profile *userProfile `json:"profile"`
}

// postWeight records a weigh-in and returns the decoded response.
func postWeight(t *testing.T, router *gin.Engine, token, date string, lbs float64) weightResponse {
	t.Helper()
	w := doRequest(router, "POST", "/api/weight-log", token, fmt.Sprintf(`{"date":%q,"weightLbs":%v}`, date, lbs))
	expectStatus(t, w, http.StatusCreated)
	var resp weightResponse
	decode(t, w, &resp)
	return resp
}

// TestWeightLog_LatestSyncsProfile verifies the newest weigh-in updates the
// profile weight and recomputes maintenance calories.
func TestWeightLog_LatestSyncsProfile(t *testing.T) {
	router, s := setupTestRouter(t, config{})
	_, token := newTestUser(t, s, "weigh@example.com")
	onboard(t, router, token)

	resp := postWeight(t, router, token, "2026-03-10", 170)
	if resp.Entry.WeightLbs != 170 || resp.Entry.Date.Format(dateLayout) != "2026-03-10" {
		t.Errorf("entry = %+v", resp.Entry)
	}
	if resp.Profile == nil {
		t.Fatal("expected the synced profile")
	}

	b := referenceBody()
	b.WeightLbs = 170
	want := maintenanceCalories(b)
	if *resp.Profile.WeightLbs != 170 || *resp.Profile.MaintenanceCalories != want {
		t.Errorf("profile weight/maintenance = %v/%v, want 170/%d",
			*resp.Profile.WeightLbs, *resp.Profile.MaintenanceCalories, want)
	}

	// A backfilled older entry leaves the profile alone.
	old := postWeight(t, router, token, "2026-03-01", 185)
	if old.Profile != nil {
		t.Errorf("older weigh-in should not sync the profile, got %+v", old.Profile)
	}
}

func TestWeightLog_NotOnboarded(t *testing.T) {
	router, s := setupTestRouter(t, config{})
	_, token := newTestUser(t, s, "nosync@example.com")

	resp := postWeight(t, router, token, "2026-03-10", 170)
	if resp.Profile != nil {
		t.Errorf("expected null profile before onboarding, got %+v", resp.Profile)
	}
}

func TestWeightLog_UpsertAndList(t *testing.T) {
	router, s := setupTestRouter(t, config{})
	_, token := newTestUser(t, s, "list@example.com")

	first := postWeight(t, router, token, "2026-03-02", 180)
	second := postWeight(t, router, token, "2026-03-02", 179.5)
	if first.Entry.ID != second.Entry.ID {
		t.Errorf("same-day weigh-in created a new entry: %d vs %d", first.Entry.ID, second.Entry.ID)
	}
	postWeight(t, router, token, "2026-03-01", 181)
	postWeight(t, router, token, "2026-04-01", 175)

	w := doRequest(router, "GET", "/api/weight-log?start=2026-03-01&end=2026-03-31", token, "")
	expectStatus(t, w, http.StatusOK)
	var entries []weightEntry
	decode(t, w, &entries)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in March, got %d", len(entries))
	}
	if entries[0].WeightLbs != 181 || entries[1].WeightLbs != 179.5 {
		t.Errorf("entries = %+v, want 181 then 179.5", entries)
	}

	w = doRequest(router, "GET", "/api/weight-log?start=2025-01-01&end=2025-01-31", token, "")
	expectStatus(t, w, http.StatusOK)
	if w.Body.String() != "[]" {
		t.Errorf("empty range = %s, want []", w.Body.String())
	}
}

func TestWeightLog_Validation(t *testing.T) {
	router, s := setupTestRouter(t, config{})
	_, token := newTestUser(t, s, "wval@example.com")

	for _, body := range []string{
		`{"weightLbs":180}`,
		`{"date":"2026-3-1","weightLbs":180}`,
		`{"date":"2026-03-01","weightLbs":0}`,
		`{"date":"2026-03-01","weightLbs":10000}`,
		`not json`,
	} {
		w := doRequest(router, "POST", "/api/weight-log", token, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("POST %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestWeightLog_Delete(t *testing.T) {
	router, s := setupTestRouter(t, config{})
	_, alice := newTestUser(t, s, "walice@example.com")
	_, bob := newTestUser(t, s, "wbob@example.com")

	e := postWeight(t, router, alice, "2026-03-02", 150).Entry
	path := fmt.Sprintf("/api/weight-log/%d", e.ID)

	expectStatus(t, doRequest(router, "DELETE", path, bob, ""), http.StatusNotFound)
	expectStatus(t, doRequest(router, "DELETE", path, alice, ""), http.StatusNoContent)
	expectStatus(t, doRequest(router, "DELETE", path, alice, ""), http.StatusNotFound)
}
