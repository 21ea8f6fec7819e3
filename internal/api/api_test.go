package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spot_market/internal/config"
	"spot_market/internal/domain"
	"spot_market/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive for the test
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Spot{},
		&domain.SpotImage{},
		&domain.Review{},
		&domain.ReviewImage{},
	))
	return db
}

// newTestRouter wires the full API against the given database, optionally
// with a Redis client.
func newTestRouter(t *testing.T, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(db, rdb, &config.Config{JWTSecret: testSecret})
}

// createTestUser inserts a user and returns it with a valid session token.
func createTestUser(t *testing.T, db *gorm.DB, username string) (domain.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		Username:       username,
		Email:          username + "@example.com",
		HashedPassword: string(hash),
		FirstName:      "Test",
		LastName:       "User",
	}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateJWT(user.ID, testSecret)
	require.NoError(t, err)
	return user, token
}

// createTestSpot inserts a valid spot owned by the given user.
func createTestSpot(t *testing.T, db *gorm.DB, ownerID uint, name string) domain.Spot {
	t.Helper()
	spot := domain.Spot{
		OwnerID:     ownerID,
		Address:     "123 Shore Rd",
		City:        "Santa Cruz",
		State:       "CA",
		Country:     "USA",
		Lat:         36.97,
		Lng:         -122.03,
		Name:        name,
		Description: "A breezy place by the water",
		Price:       150,
	}
	require.NoError(t, db.Create(&spot).Error)
	return spot
}

// doJSON performs one request against the router, with an optional bearer
// token and JSON body.
func doJSON(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// newCookieRequest builds a request carrying the session cookie instead of a
// bearer header.
func newCookieRequest(t *testing.T, method, path, token string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	return req
}

// serve records the router's response to a prepared request.
func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a recorded response body into out.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// validSpotBody is a spot payload that passes all validation.
func validSpotBody() map[string]any {
	return map[string]any{
		"address":     "742 Evergreen Terrace",
		"city":        "Springfield",
		"state":       "OR",
		"country":     "USA",
		"lat":         44.04,
		"lng":         -123.02,
		"name":        "Quiet family home",
		"description": "Two bedrooms and a big yard",
		"price":       89.5,
	}
}
