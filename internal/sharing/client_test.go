package sharing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"productstudio/internal/domain"
)

func TestUploadForSharingResponseShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantURL string
		wantErr bool
	}{
		{name: "top level", body: `{"file_url":"https://cdn.example.com/a.png"}`, wantURL: "https://cdn.example.com/a.png"},
		{name: "nested", body: `{"success":true,"data":{"file_url":"https://cdn.example.com/b.png"}}`, wantURL: "https://cdn.example.com/b.png"},
		{name: "top level wins", body: `{"file_url":"https://x/1.png","data":{"file_url":"https://x/2.png"}}`, wantURL: "https://x/1.png"},
		{name: "missing url", body: `{"data":{}}`, wantErr: true},
		{name: "empty url", body: `{"file_url":"  "}`, wantErr: true},
		{name: "not json", body: `<html>ok</html>`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			}))
			defer ts.Close()

			link, err := NewClient(Options{Endpoint: ts.URL}).UploadForSharing(context.Background(), []byte("png"), "image/png")
			if tc.wantErr {
				if !errors.Is(err, domain.ErrUpload) {
					t.Fatalf("expected upload error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UploadForSharing error: %v", err)
			}
			if link.URL != tc.wantURL {
				t.Fatalf("url = %q, want %q", link.URL, tc.wantURL)
			}
		})
	}
}

func TestUploadForSharingSendsMultipartFile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "jpeg-bytes" {
			t.Errorf("unexpected file content: %q", data)
		}
		if header.Filename != "generated-image.jpg" {
			t.Errorf("unexpected filename: %s", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("unexpected part content type: %s", ct)
		}
		_, _ = io.WriteString(w, `{"file_url":"https://cdn.example.com/c.jpg"}`)
	}))
	defer ts.Close()

	link, err := NewClient(Options{Endpoint: ts.URL}).UploadForSharing(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("UploadForSharing error: %v", err)
	}
	if link.URL != "https://cdn.example.com/c.jpg" {
		t.Fatalf("unexpected url: %s", link.URL)
	}
}

func TestUploadForSharingNon2xx(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = io.WriteString(w, "file too large")
	}))
	defer ts.Close()

	_, err := NewClient(Options{Endpoint: ts.URL}).UploadForSharing(context.Background(), []byte("png"), "")
	var upErr *domain.UploadError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected UploadError, got %v", err)
	}
	if upErr.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", upErr.Status)
	}
	if !strings.Contains(err.Error(), "413") || !strings.Contains(err.Error(), "file too large") {
		t.Fatalf("error should carry status and body: %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single attempt, got %d", hits)
	}
}

func TestUploadForSharingRejectsEmptyImage(t *testing.T) {
	_, err := NewClient(Options{Endpoint: "http://127.0.0.1:1"}).UploadForSharing(context.Background(), nil, "image/png")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
