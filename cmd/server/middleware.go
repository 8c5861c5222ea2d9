package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/explainer/server/internal/logger"
)

// explanation requests per client IP per minute. LLM calls are the
// expensive path; everything else rides gin's defaults
const explainRateLimit = "30-M"

// tags every request with an ID so log lines from one request can be
// correlated. honors an incoming X-Request-ID from a trusted proxy
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// configures cross-origin access. development allows everything;
// production requires ALLOWED_ORIGINS
func CORSMiddleware() gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		origins := strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}

		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}

	return cors.New(corsConfig)
}

// builds the per-IP rate limiter for the explain endpoint, backed by
// the shared Redis instance so limits hold across replicas. returns nil
// when the store can't be built; the endpoint then runs unlimited
func ExplainRateLimiter(server *Server) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(explainRateLimit)
	if err != nil {
		logger.ErrorErr(err, "failed to parse explain rate limit")
		return nil
	}

	store, err := sredis.NewStoreWithOptions(server.cache.Client(), limiter.StoreOptions{
		Prefix: "limiter_explain",
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create rate limiter store")
		return nil
	}

	return mgin.NewMiddleware(limiter.New(store, rate))
}
