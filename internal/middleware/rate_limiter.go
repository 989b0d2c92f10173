package middleware

import (
	"net/http"
	"sync"
	"time"

	"sistemainventario/internal/apierror"

	"github.com/gin-gonic/gin"
)

// rateEntry tracks request counts per client within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

type limitador struct {
	mu          sync.Mutex
	entradas    map[string]*rateEntry
	limit       int
	window      time.Duration
	ultimaPurga time.Time
}

// permitir counts one request for key and reports whether it is within limit.
func (l *limitador) permitir(key string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// expired entries are dropped at most once per window
	if now.Sub(l.ultimaPurga) > l.window {
		for k, e := range l.entradas {
			if now.After(e.windowEnd) {
				delete(l.entradas, k)
			}
		}
		l.ultimaPurga = now
	}

	e, ok := l.entradas[key]
	if !ok || now.After(e.windowEnd) {
		e = &rateEntry{windowEnd: now.Add(l.window)}
		l.entradas[key] = e
	}
	e.count++
	return e.count <= l.limit, e.windowEnd
}

// RateLimiter limits each client IP to limit requests per window.
// A non-positive limit disables it.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := &limitador{entradas: make(map[string]*rateEntry), limit: limit, window: window}

	return func(c *gin.Context) {
		ok, fin := l.permitir(c.ClientIP(), time.Now())
		if !ok {
			c.Header("Retry-After", fin.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
