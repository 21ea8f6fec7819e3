package api

import (
	"spot_market/internal/config"     // Application configuration
	"spot_market/internal/middleware" // Auth middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every route of the marketplace API. rdb may be nil, which
// disables caching.
func NewRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default() // Gin router instance with logger and recovery

	// Make the Redis client available to mutation handlers for invalidation
	if rdb != nil {
		r.Use(func(c *gin.Context) {
			c.Set("redisClient", rdb)
			c.Next()
		})
	}

	api := r.Group("/api") // All routes live under /api

	// Session routes
	api.POST("/users", SignupHandler(db, cfg.JWTSecret, cfg.IsProd))  // Registration endpoint
	api.POST("/session", LoginHandler(db, cfg.JWTSecret, cfg.IsProd)) // Login endpoint
	api.GET("/session", SessionHandler(db, cfg.JWTSecret))            // Session restore endpoint
	api.DELETE("/session", LogoutHandler())                           // Logout endpoint

	// Public spot routes
	api.GET("/spots", ListSpotsHandler(db, rdb))    // Paginated feed endpoint
	api.GET("/spots/:id", GetSpotHandler(db, rdb)) // Spot detail endpoint

	// Protected routes (session required)
	auth := api.Group("")
	auth.Use(middleware.RequireAuth(cfg.JWTSecret))
	auth.GET("/spots/current", CurrentSpotsHandler(db))               // Caller's spots endpoint
	auth.POST("/spots", CreateSpotHandler(db))                        // Create spot endpoint
	auth.PUT("/spots/:id", UpdateSpotHandler(db))                     // Update spot endpoint
	auth.DELETE("/spots/:id", DeleteSpotHandler(db))                  // Delete spot endpoint
	auth.POST("/spots/:id/images", AddSpotImageHandler(db))           // Attach spot image endpoint
	auth.POST("/reviews", CreateReviewHandler(db))                    // Create review endpoint
	auth.GET("/reviews/current", CurrentReviewsHandler(db))           // Caller's reviews endpoint
	auth.POST("/reviews/:reviewId/images", AddReviewImageHandler(db)) // Attach review image endpoint
	auth.PUT("/reviews/:reviewId", UpdateReviewHandler(db))           // Update review endpoint
	auth.DELETE("/reviews/:reviewId", DeleteReviewHandler(db))        // Delete review endpoint

	return r
}
