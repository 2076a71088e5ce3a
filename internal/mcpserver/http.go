package mcpserver

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"trendboard/internal/provider"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HTTPHandler serves the MCP server over streamable HTTP behind bearer
// auth and a request rate limit.
func HTTPHandler(server *mcp.Server, authToken string, limiter *provider.RateLimiter) http.Handler {
	h := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	return guard(h, authToken, limiter)
}

func guard(next http.Handler, authToken string, limiter *provider.RateLimiter) http.Handler {
	authToken = strings.TrimSpace(authToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if authToken != "" {
			got := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
			if subtle.ConstantTimeCompare([]byte(got), []byte(authToken)) != 1 {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		if limiter != nil && !limiter.Allow() {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
