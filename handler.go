package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler holds shared dependencies (store, auth config, upstream URLs) for all
// route handlers.
type Handler struct {
	store       store
	jwtSecret   []byte
	tokenTTL    time.Duration
	usdaBaseURL string // Base URL for FoodData Central (overridable for tests)
	usdaAPIKey  string
}

// newHandler builds a Handler from its store and the loaded config.
func newHandler(s store, cfg config) *Handler {
	return &Handler{
		store:       s,
		jwtSecret:   []byte(cfg.JWTSecret),
		tokenTTL:    cfg.TokenTTL,
		usdaBaseURL: cfg.USDABaseURL,
		usdaAPIKey:  cfg.USDAAPIKey,
	}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Request helpers ─────────────────────────────────────────────────── */

// requestID tags every request with an X-Request-ID (reusing the caller's if
// present) so log lines can be correlated with responses.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// intParam parses a positive integer path parameter, writing a 400 on failure.
func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		apiError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

// parseDateRange reads the required start/end query params, writing a 400 on failure.
func parseDateRange(c *gin.Context) (start, end string, ok bool) {
	start = c.Query("start")
	end = c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return "", "", false
	}
	if _, err := time.Parse(dateLayout, start); err != nil {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return "", "", false
	}
	if _, err := time.Parse(dateLayout, end); err != nil {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return "", "", false
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return "", "", false
	}
	return start, end, true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// managed Postgres closes idle connections after a few minutes.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "NUTRITION TRACKER API IS RUNNING")
	})

	// Public routes
	router.POST("/api/auth/signup", h.signup)
	router.POST("/api/auth/login", h.login)
	router.GET("/api/auth/verify", h.verify)
	router.GET("/api/foods/search", h.searchFoods)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.updateProfile)
	api.POST("/profile/onboarding", h.completeOnboarding)
	api.POST("/profile/preview", h.previewProfile)
	api.GET("/meals", h.getMeals)
	api.POST("/meals", h.createMeal)
	api.DELETE("/meals/:mealId", h.deleteMeal)
	api.POST("/meals/:mealId/foods", h.addFood)
	api.DELETE("/meals/:mealId/foods/:foodRecordId", h.deleteFood)
	api.GET("/progress", h.getProgress)
	api.GET("/progress/range", h.getProgressRange)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
}
