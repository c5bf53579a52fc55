package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/splitnest/splitnest_backend/internal/utils"
)

// pathsToSkip are endpoints with no analytics value.
var pathsToSkip = map[string]bool{
	"/":       true,
	"/health": true,
}

// eventNameFromRoute turns a matched route into a PostHog event name:
// "/api/v1/groups/:group_id/expenses" becomes "groups_expenses".
func eventNameFromRoute(fullPath string) string {
	name := strings.TrimPrefix(fullPath, "/api/v1")
	parts := strings.Split(name, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" || strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "_")
}

// PosthogMiddleware tracks successful API calls as PostHog events, keyed by
// the authenticated user. Unauthenticated and failed requests are not tracked.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := eventNameFromRoute(c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if groupID := c.Param("group_id"); groupID != "" {
			props["group_id"] = groupID
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}
