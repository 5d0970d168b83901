package http

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsMaxAge bounds how long browsers cache a preflight answer.
const corsMaxAge = 10 * time.Minute

// newCORSConfig describes what a browser client may do against the API: read audit data
// with GET and submit events, encryption requests and migrations with POST. No cookies
// or Authorization header are accepted cross-origin. Retry-After is exposed so clients
// can honour rate limiting.
func newCORSConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           corsMaxAge,
	}
}

// createCORSMiddleware returns nil when CORS is disabled or no usable origin is
// configured. Origins must carry an http or https scheme; wildcards are dropped because
// responses carry decrypted financial data.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	var origins []string
	for _, origin := range parseOrigins(allowOriginsStr) {
		if !validOrigin(origin) {
			logger.Warn("ignoring CORS origin", slog.String("origin", origin))
			continue
		}
		origins = append(origins, origin)
	}

	if len(origins) == 0 {
		logger.Warn("CORS enabled but no usable origins configured, CORS will not be applied")
		return nil
	}

	logger.Info("CORS enabled", slog.Any("origins", origins))
	return cors.New(newCORSConfig(origins))
}

func validOrigin(origin string) bool {
	if strings.Contains(origin, "*") {
		return false
	}
	return strings.HasPrefix(origin, "https://") || strings.HasPrefix(origin, "http://")
}

// parseOrigins splits a comma-separated list, trimming whitespace and trailing slashes.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimRight(strings.TrimSpace(part), "/"); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
