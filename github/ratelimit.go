package github

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"ghexplorer/logger"
)

// RateLimit represents GitHub's rate limit information
type RateLimit struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// parseRateLimit parses rate limit information from response headers.
// ok is false when the response carries no rate limit headers.
func parseRateLimit(resp *http.Response) (RateLimit, bool) {
	if resp.Header.Get("X-RateLimit-Limit") == "" {
		return RateLimit{}, false
	}
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Unix(reset, 0).UTC(),
	}, true
}

// recordRateLimit stores the latest rate limit and warns when it is used up.
// There is no automatic waiting: retries are up to the user.
func (c *Client) recordRateLimit(resp *http.Response) {
	rl, ok := parseRateLimit(resp)
	if !ok {
		return
	}

	c.mu.Lock()
	c.rateLimit = rl
	c.mu.Unlock()

	if rl.Remaining == 0 {
		logger.Warn("Rate limit exhausted",
			zap.Int("limit", rl.Limit),
			zap.Time("reset_time", rl.Reset),
			zap.Duration("wait_time", time.Until(rl.Reset)))
	}
}
