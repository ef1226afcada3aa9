package middleware

import (
	"net/http"
	"strings"
	"sync"
)

const (
	// ViewIDHeader identifies one open dashboard view.
	ViewIDHeader = "X-View-ID"
	// CredentialHeader carries a per-request OpenAI key.
	CredentialHeader = "X-OpenAI-Key"
)

// InFlight rejects a request with 409 while another request from the same
// view is still being served. Requests without a view id, or from
// different views, are never held back.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{active: make(map[string]struct{})}
}

func (f *InFlight) acquire(view string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[view]; busy {
		return false
	}
	f.active[view] = struct{}{}
	return true
}

func (f *InFlight) release(view string) {
	f.mu.Lock()
	delete(f.active, view)
	f.mu.Unlock()
}

// Busy reports whether view currently has a request outstanding.
func (f *InFlight) Busy(view string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.active[view]
	return busy
}

func (f *InFlight) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view := strings.TrimSpace(r.Header.Get(ViewIDHeader))
		if view == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !f.acquire(view) {
			writeError(w, http.StatusConflict, "operation_in_flight", "another operation is still running for this view")
			return
		}
		defer f.release(view)
		next.ServeHTTP(w, r)
	})
}
