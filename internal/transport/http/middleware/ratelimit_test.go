package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func doRequest(rl *RateLimiter, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr.Code
}

func TestLimit_AllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 3)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(rl, "1.2.3.4:1000"))
	}
}

func TestLimit_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	doRequest(rl, "1.2.3.4:1000")
	doRequest(rl, "1.2.3.4:1000")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(rl, "1.2.3.4:1000"))
}

func TestLimit_RejectionIsJSON(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	doRequest(rl, "1.2.3.4:1000")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "1.2.3.4:1000"
	rr := httptest.NewRecorder()
	rl.Limit(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"too many requests"}`, rr.Body.String())
}

// Reconnects from the same host share a bucket even though the source port changes.
func TestLimit_SameHostDifferentPorts_ShareBucket(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2)
	doRequest(rl, "1.2.3.4:1000")
	doRequest(rl, "1.2.3.4:2000")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(rl, "1.2.3.4:3000"))
}

func TestLimit_DifferentHosts_IndependentBuckets(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	assert.Equal(t, http.StatusOK, doRequest(rl, "1.2.3.4:1000"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(rl, "1.2.3.4:1000"))
	assert.Equal(t, http.StatusOK, doRequest(rl, "5.6.7.8:1000"))
}
