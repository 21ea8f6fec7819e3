package api

import (
	"net/http"
	"testing"

	"spot_market/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)

	body := map[string]any{
		"username":  "Maya",
		"email":     "maya@example.com",
		"password":  "supersecret",
		"firstName": "Maya",
		"lastName":  "Lee",
	}
	w := doJSON(t, r, http.MethodPost, "/api/users", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, w, &res)
	assert.Equal(t, "maya", res.User.Username, "usernames are stored lowercase")
	assert.Equal(t, "maya@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)
	// The session cookie is set alongside the token
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=")
	// The password never leaves the server
	assert.NotContains(t, w.Body.String(), "supersecret")
}

func TestSignupValidation(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)

	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing username", map[string]any{"email": "a@b.com", "password": "longenough", "firstName": "A", "lastName": "B"}, "username"},
		{"bad email", map[string]any{"username": "ann", "email": "not-an-email", "password": "longenough", "firstName": "A", "lastName": "B"}, "email"},
		{"short password", map[string]any{"username": "ann", "email": "a@b.com", "password": "short", "firstName": "A", "lastName": "B"}, "password"},
		{"missing first name", map[string]any{"username": "ann", "email": "a@b.com", "password": "longenough", "lastName": "B"}, "firstName"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/users", "", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			var res struct {
				Errors map[string]string `json:"errors"`
			}
			decodeBody(t, w, &res)
			assert.Contains(t, res.Errors, tc.field)
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)
	createTestUser(t, db, "taken")

	body := map[string]any{
		"username":  "taken",
		"email":     "other@example.com",
		"password":  "supersecret",
		"firstName": "A",
		"lastName":  "B",
	}
	w := doJSON(t, r, http.MethodPost, "/api/users", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)
	user, _ := createTestUser(t, db, "nina")

	// By username
	w := doJSON(t, r, http.MethodPost, "/api/session", "", map[string]string{
		"credential": "nina", "password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	decodeBody(t, w, &res)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Token)

	// By email
	w = doJSON(t, r, http.MethodPost, "/api/session", "", map[string]string{
		"credential": "nina@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Wrong password
	w = doJSON(t, r, http.MethodPost, "/api/session", "", map[string]string{
		"credential": "nina", "password": "wrongwrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown user
	w = doJSON(t, r, http.MethodPost, "/api/session", "", map[string]string{
		"credential": "nobody", "password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionRestore(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)
	user, token := createTestUser(t, db, "sasha")

	// With a valid cookie the session user comes back
	req := newCookieRequest(t, http.MethodGet, "/api/session", token)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		User *domain.User `json:"user"`
	}
	decodeBody(t, w, &res)
	require.NotNil(t, res.User)
	assert.Equal(t, user.ID, res.User.ID)

	// Without a cookie the user is null
	w = doJSON(t, r, http.MethodGet, "/api/session", "", nil)
	decodeBody(t, w, &res)
	assert.Nil(t, res.User)

	// With a garbage cookie the user is null, not an error
	req = newCookieRequest(t, http.MethodGet, "/api/session", "garbage")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &res)
	assert.Nil(t, res.User)
}

func TestAuthViaCookie(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)
	_, token := createTestUser(t, db, "carl")

	// Protected endpoints accept the session cookie as well as the header
	req := newCookieRequest(t, http.MethodGet, "/api/spots/current", token)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(t, db, nil)

	w := doJSON(t, r, http.MethodDelete, "/api/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	// The cookie is expired
	assert.Contains(t, w.Header().Get("Set-Cookie"), "token=;")
}
