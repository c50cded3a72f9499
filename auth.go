package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// dummyHash is a pre-computed bcrypt hash used when a login email isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// authClaims is the JWT payload: the user's id and email plus registered claims.
type authClaims struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// issueToken signs an HS256 token for u that expires after ttl.
func issueToken(secret []byte, ttl time.Duration, u user) (string, error) {
	now := time.Now()
	claims := authClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// parseToken verifies signature, algorithm and expiry.
func parseToken(secret []byte, tokenString string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// bearerToken extracts the token from an "Authorization: Bearer <t>" header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// authUser is the user object returned by the auth endpoints.
func authUser(u user, token string) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "token": token}
}

// signup creates a user with an empty profile and returns a token.
// POST /api/auth/signup (public).
func (h *Handler) signup(c *gin.Context) {
	var body authRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "email and password required")
		return
	}
	if len(body.Password) < minPasswordLength {
		apiError(c, http.StatusBadRequest, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[signup] bcrypt error: %v", err)
		apiError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	u, err := h.store.createUser(c, email, string(hash))
	if errors.Is(err, errEmailTaken) {
		apiError(c, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		log.Printf("[signup] create user failed: %v", err)
		apiError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := issueToken(h.jwtSecret, h.tokenTTL, u)
	if err != nil {
		log.Printf("[signup] sign token failed: %v", err)
		apiError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": authUser(u, token), "onboardingCompleted": false})
}

// login verifies email/password and returns a token and the user's profile.
// POST /api/auth/login (public).
func (h *Handler) login(c *gin.Context) {
	var body authRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "email and password required")
		return
	}

	u, lookupErr := h.store.getUserByEmail(c, strings.ToLower(strings.TrimSpace(body.Email)))

	// bcrypt runs whether or not the email exists.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil && !errors.Is(lookupErr, errNotFound) {
		apiError(c, http.StatusInternalServerError, "internal server error")
		return
	}
	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := issueToken(h.jwtSecret, h.tokenTTL, u)
	if err != nil {
		log.Printf("[login] sign token failed: %v", err)
		apiError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": authUser(u, token), "profile": h.profileOrNil(c, u.ID)})
}

// verify checks the bearer token and returns the user and profile.
// GET /api/auth/verify (public; validates its own token).
func (h *Handler) verify(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		apiError(c, http.StatusUnauthorized, "no token provided")
		return
	}
	claims, err := parseToken(h.jwtSecret, token)
	if err != nil {
		apiError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	u, err := h.store.getUserByID(c, claims.UserID)
	if err != nil {
		apiError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": authUser(u, token), "profile": h.profileOrNil(c, u.ID)})
}

// profileOrNil loads the profile for auth responses; failures become null.
func (h *Handler) profileOrNil(c *gin.Context, userID int) *userProfile {
	p, err := h.store.getProfile(c, userID)
	if err != nil {
		if !errors.Is(err, errNotFound) {
			log.Printf("[profileOrNil] profile lookup for user %d failed: %v", userID, err)
		}
		return nil
	}
	p.populateMacroGrams()
	return &p
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := parseToken(h.jwtSecret, token)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}
