package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts an in-process Redis and a client against it.
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestFeedCaching(t *testing.T) {
	db := setupTestDB(t)
	mr, rdb := setupTestRedis(t)
	r := newTestRouter(t, db, rdb)
	owner, _ := createTestUser(t, db, "owner")
	createTestSpot(t, db, owner.ID, "First spot")

	// The first request populates the cache
	w := doJSON(t, r, http.MethodGet, "/api/spots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mr.Exists("spots:page:1:size:20"))

	// A write that bypasses the API leaves the cached page stale
	createTestSpot(t, db, owner.ID, "Sneaky spot")
	var res struct {
		Spots []any `json:"spots"`
	}
	w = doJSON(t, r, http.MethodGet, "/api/spots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &res)
	assert.Len(t, res.Spots, 1, "the stale page is still served")

	// After the TTL the fresh state comes back
	mr.FastForward(61 * time.Second)
	w = doJSON(t, r, http.MethodGet, "/api/spots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &res)
	assert.Len(t, res.Spots, 2)
}

func TestFeedInvalidationOnCreate(t *testing.T) {
	db := setupTestDB(t)
	mr, rdb := setupTestRedis(t)
	r := newTestRouter(t, db, rdb)
	owner, token := createTestUser(t, db, "owner")
	createTestSpot(t, db, owner.ID, "First spot")

	// Populate the cache
	w := doJSON(t, r, http.MethodGet, "/api/spots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mr.Exists("spots:page:1:size:20"))

	// Creating a spot through the API drops the cached pages
	w = doJSON(t, r, http.MethodPost, "/api/spots", token, validSpotBody())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, mr.Exists("spots:page:1:size:20"))

	// The next read sees both spots immediately
	var res struct {
		Spots []any `json:"spots"`
	}
	w = doJSON(t, r, http.MethodGet, "/api/spots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &res)
	assert.Len(t, res.Spots, 2)
}

func TestSpotDetailInvalidation(t *testing.T) {
	db := setupTestDB(t)
	mr, rdb := setupTestRedis(t)
	r := newTestRouter(t, db, rdb)
	owner, ownerToken := createTestUser(t, db, "owner")
	_, guestToken := createTestUser(t, db, "guest")
	spot := createTestSpot(t, db, owner.ID, "Cached spot")
	path := fmt.Sprintf("/api/spots/%d", spot.ID)
	detailKey := fmt.Sprintf("spot:%d", spot.ID)

	// Populate the detail cache
	w := doJSON(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mr.Exists(detailKey))

	// An update by the owner drops it
	body := validSpotBody()
	body["name"] = "Renamed spot"
	w = doJSON(t, r, http.MethodPut, path, ownerToken, body)
	require.Equal(t, http.StatusOK, w.Code)
	require.False(t, mr.Exists(detailKey))

	// The fresh read reflects the rename and repopulates the cache
	var res struct {
		Name string `json:"name"`
	}
	w = doJSON(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &res)
	assert.Equal(t, "Renamed spot", res.Name)
	require.True(t, mr.Exists(detailKey))

	// A new review also drops the detail, since ratings feed into it
	w = doJSON(t, r, http.MethodPost, "/api/reviews", guestToken,
		map[string]any{"spotId": spot.ID, "review": "Nice", "stars": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, mr.Exists(detailKey))

	var detail struct {
		AvgRating *float64 `json:"avgRating"`
	}
	w = doJSON(t, r, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &detail)
	require.NotNil(t, detail.AvgRating)
	assert.Equal(t, 5.0, *detail.AvgRating)
}

func TestCachedDetailRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	_, rdb := setupTestRedis(t)
	r := newTestRouter(t, db, rdb)
	owner, token := createTestUser(t, db, "owner")
	spot := createTestSpot(t, db, owner.ID, "Round trip")
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/spots/%d/images", spot.ID), token,
		map[string]any{"url": "https://img.example.com/p.jpg", "preview": true})
	require.Equal(t, http.StatusCreated, w.Code)
	path := fmt.Sprintf("/api/spots/%d", spot.ID)

	read := func() (string, *string) {
		w := doJSON(t, r, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res struct {
			Name         string  `json:"name"`
			PreviewImage *string `json:"previewImage"`
			Owner        struct {
				FirstName string `json:"firstName"`
			} `json:"owner"`
		}
		decodeBody(t, w, &res)
		require.Equal(t, "Test", res.Owner.FirstName)
		return res.Name, res.PreviewImage
	}

	// The cold read and the cached read agree field for field
	name1, preview1 := read()
	name2, preview2 := read()
	assert.Equal(t, name1, name2)
	require.NotNil(t, preview1)
	require.NotNil(t, preview2)
	assert.Equal(t, *preview1, *preview2)
}
