package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	cleanupInterval = 10 * time.Minute
	bucketTimeout   = 30 * time.Minute
	defaultWindow   = time.Minute
)

type contextKey string

// sessionIDKey carries the MCP session ID across the fresh contexts created
// by the timeout middleware
const sessionIDKey contextKey = "ratelimit.sessionID"

// SetSessionIDToContext stores the session ID in the context so the rate
// limiter can identify callers even when the original request context has
// been replaced
func SetSessionIDToContext(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// RateLimiter implements a rate limiting middleware for the MCP server
// It uses a fixed time window to limit the number of requests for each tool
type RateLimiter struct {
	mu            sync.RWMutex
	limits        map[string]int                // Tool name to requests per window
	defaultLimit  int                           // Default requests per window
	window        time.Duration                 // Length of the limiting window
	buckets       map[string]map[string]*bucket // SessionID:[Tool:Bucket] mapping
	cleanupTicker *time.Ticker
}

// bucket tracks request counts within the current window
type bucket struct {
	mu          sync.Mutex
	count       int
	windowStart time.Time
	lastSeen    time.Time
}

// RateLimiterOption is a function that configures a RateLimiter
type RateLimiterOption func(*RateLimiter)

// WithToolLimit sets the rate limit for a specific tool
func WithToolLimit(toolName string, requestsPerWindow int) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.limits[toolName] = requestsPerWindow
	}
}

// WithDefaultLimit sets the default rate limit for all tools
func WithDefaultLimit(requestsPerWindow int) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.defaultLimit = requestsPerWindow
	}
}

// WithTimeWindow sets the length of the limiting window
func WithTimeWindow(window time.Duration) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.window = window
	}
}

// NewRateLimiter creates a new rate limiter with the given options
func NewRateLimiter(opts ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limits:       make(map[string]int),
		defaultLimit: defaultLimit,
		window:       defaultWindow,
		buckets:      make(map[string]map[string]*bucket),
	}

	for _, opt := range opts {
		opt(rl)
	}

	// Start a cleanup ticker to remove old buckets
	rl.cleanupTicker = time.NewTicker(cleanupInterval)
	go func() {
		for range rl.cleanupTicker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for sessionID, toolBuckets := range rl.buckets {
		for tool, b := range toolBuckets {
			b.mu.Lock()
			// If bucket hasn't been used for bucketTimeout, remove it
			if now.Sub(b.lastSeen) > bucketTimeout {
				delete(toolBuckets, tool)
			}
			b.mu.Unlock()
		}
		// If no more buckets for this session, remove the session entry
		if len(toolBuckets) == 0 {
			delete(rl.buckets, sessionID)
		}
	}
}

// Stop stops the cleanup ticker
func (rl *RateLimiter) Stop() {
	if rl.cleanupTicker != nil {
		rl.cleanupTicker.Stop()
	}
}

// getSessionID extracts the session ID from the request context. Without a
// session it falls back to a per-tool identifier so limits still apply.
func getSessionID(ctx context.Context, tool string) string {
	if sessionID, ok := ctx.Value(sessionIDKey).(string); ok && sessionID != "" {
		return sessionID
	}
	if session := server.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID()
	}
	return "tool:" + tool
}

// getBucket gets or creates a bucket for the given session ID and tool
func (rl *RateLimiter) getBucket(sessionID, tool string) *bucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Create session map if it doesn't exist
	if _, ok := rl.buckets[sessionID]; !ok {
		rl.buckets[sessionID] = make(map[string]*bucket)
	}

	// Create bucket if it doesn't exist
	if _, ok := rl.buckets[sessionID][tool]; !ok {
		rl.buckets[sessionID][tool] = &bucket{
			windowStart: time.Now(),
		}
	}

	return rl.buckets[sessionID][tool]
}

// getLimit returns the rate limit for the given tool
func (rl *RateLimiter) getLimit(tool string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	if limit, ok := rl.limits[tool]; ok {
		return limit
	}
	return rl.defaultLimit
}

// Middleware returns a middleware function for the MCP server
func (rl *RateLimiter) Middleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			tool := request.Params.Name
			sessionID := getSessionID(ctx, tool)

			b := rl.getBucket(sessionID, tool)
			b.mu.Lock()
			defer b.mu.Unlock()

			now := time.Now()
			b.lastSeen = now

			// Reset the bucket when the window has elapsed
			if now.Sub(b.windowStart) >= rl.window {
				b.count = 0
				b.windowStart = now
			}

			if b.count >= rl.getLimit(tool) {
				return mcp.NewToolResultError(fmt.Sprintf("Rate limit exceeded for tool '%s'. Try again later.", tool)), nil
			}
			b.count++

			// Call the next handler
			return next(ctx, request)
		}
	}
}
