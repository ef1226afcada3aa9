package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestInFlightRejectsSecondRequestFromSameView(t *testing.T) {
	guard := NewInFlight()
	entered := make(chan struct{})
	release := make(chan struct{})
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(ViewIDHeader) == "view-a" && r.URL.Path == "/slow" {
			close(entered)
			<-release
		}
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	first := httptest.NewRecorder()
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/slow", nil)
		req.Header.Set(ViewIDHeader, "view-a")
		h.ServeHTTP(first, req)
	}()
	<-entered

	if !guard.Busy("view-a") {
		t.Fatalf("expected view-a to be busy")
	}

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/fast", nil)
	req.Header.Set(ViewIDHeader, "view-a")
	h.ServeHTTP(second, req)
	if second.Code != http.StatusConflict {
		t.Fatalf("second status = %d, want 409", second.Code)
	}
	if !strings.Contains(second.Body.String(), "operation_in_flight") {
		t.Fatalf("unexpected body: %s", second.Body.String())
	}

	other := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/fast", nil)
	req.Header.Set(ViewIDHeader, "view-b")
	h.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Fatalf("other view status = %d", other.Code)
	}

	anonymous := httptest.NewRecorder()
	h.ServeHTTP(anonymous, httptest.NewRequest(http.MethodPost, "/fast", nil))
	if anonymous.Code != http.StatusOK {
		t.Fatalf("request without view id status = %d", anonymous.Code)
	}

	close(release)
	wg.Wait()
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	if guard.Busy("view-a") {
		t.Fatalf("view-a should be released")
	}
}

func TestInFlightReleasesAfterPanic(t *testing.T) {
	guard := NewInFlight()
	h := guard.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	func() {
		defer func() { _ = recover() }()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(ViewIDHeader, "view-a")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}()
	if guard.Busy("view-a") {
		t.Fatalf("view-a should be released after panic")
	}
}
