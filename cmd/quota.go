package main

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientQuota enforces a per-client hourly request budget using token
// buckets. Clients are keyed by X-API-Key when present, else remote IP.
type clientQuota struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	perHour int
}

func newClientQuota(perHour int) *clientQuota {
	return &clientQuota{
		buckets: make(map[string]*rate.Limiter),
		perHour: perHour,
	}
}

func (q *clientQuota) limiter(key string) *rate.Limiter {
	q.mu.Lock()
	defer q.mu.Unlock()
	l, ok := q.buckets[key]
	if !ok {
		l = rate.NewLimiter(rate.Limit(float64(q.perHour)/3600.0), q.perHour)
		q.buckets[key] = l
	}
	return l
}

func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// middleware rejects requests over quota with 429.
func (q *clientQuota) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !q.limiter(clientKey(r)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
