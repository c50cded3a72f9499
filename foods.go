package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const foodSearchPageSize = 10

var errNoAPIKey = errors.New("USDA_API_KEY not set")

/* ─── FoodData Central types ─────────────────────────────────────────── */

// fdcSearchResponse is the subset of /fdc/v1/foods/search we read.
type fdcSearchResponse struct {
	Foods []struct {
		FdcID         int64  `json:"fdcId"`
		Description   string `json:"description"`
		FoodNutrients []struct {
			NutrientName string  `json:"nutrientName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// foodSearchResult is one food in GET /api/foods/search. Nutrients the
// upstream doesn't report stay null rather than 0.
type foodSearchResult struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Calories *float64 `json:"calories"`
	Protein  *float64 `json:"protein"`
	Carbs    *float64 `json:"carbs"`
	Fat      *float64 `json:"fat"`
	Unit     string   `json:"unit"`
}

// Nutrient names are matched in order; the first present wins.
var (
	energyNutrients  = []string{"Energy"}
	proteinNutrients = []string{"Protein"}
	carbsNutrients   = []string{"Carbohydrate, by difference", "Carbohydrate"}
	fatNutrients     = []string{"Total lipid (fat)"}
)

/* ─── FoodData Central HTTP client ───────────────────────────────────── */

// searchFDC queries FoodData Central and maps each hit to a foodSearchResult.
// Uses raw net/http; the API is a single GET.
func searchFDC(ctx context.Context, baseURL, apiKey, query string) ([]foodSearchResult, error) {
	if apiKey == "" {
		return nil, errNoAPIKey
	}

	u, err := url.Parse(baseURL + "/fdc/v1/foods/search")
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	params := u.Query()
	params.Set("api_key", apiKey)
	params.Set("query", query)
	params.Set("pageSize", fmt.Sprint(foodSearchPageSize))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fdc returned status %d: %s", resp.StatusCode, string(body))
	}

	var sr fdcSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	results := make([]foodSearchResult, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		find := func(names []string) *float64 {
			for _, name := range names {
				for _, n := range f.FoodNutrients {
					if n.NutrientName == name {
						v := n.Value
						return &v
					}
				}
			}
			return nil
		}
		results = append(results, foodSearchResult{
			ID:       f.FdcID,
			Name:     f.Description,
			Calories: find(energyNutrients),
			Protein:  find(proteinNutrients),
			Carbs:    find(carbsNutrients),
			Fat:      find(fatNutrients),
			Unit:     "kcal",
		})
	}
	return results, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// searchFoods proxies a name search to FoodData Central.
// GET /api/foods/search?q=... (public).
func (h *Handler) searchFoods(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		apiError(c, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	foods, err := searchFDC(c.Request.Context(), h.usdaBaseURL, h.usdaAPIKey, q)
	if errors.Is(err, errNoAPIKey) {
		log.Printf("[searchFoods] %v", err)
		apiError(c, http.StatusInternalServerError, "food search is not configured")
		return
	}
	if err != nil {
		log.Printf("[searchFoods] FDC error: %v", err)
		apiError(c, http.StatusBadGateway, "failed to fetch food data")
		return
	}

	c.JSON(http.StatusOK, gin.H{"foods": foods})
}
