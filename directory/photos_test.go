// ABOUTME: Conditional photo download tests
// ABOUTME: Covers 200/304/404 handling, sizing params, and Last-Modified fallback
package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchPhotoOK(t *testing.T) {
	var gotQuery, gotIfModified, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotIfModified = r.Header.Get("If-Modified-Since")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	client := testClient("")
	photo, err := client.FetchPhoto(context.Background(), server.URL, 512, "")
	if err != nil {
		t.Fatalf("FetchPhoto failed: %v", err)
	}

	if photo.Status != PhotoOK {
		t.Fatalf("expected PhotoOK, got %v", photo.Status)
	}
	if string(photo.Data) != "jpeg-bytes" {
		t.Errorf("unexpected data %q", photo.Data)
	}
	if photo.LastModified != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("unexpected token %q", photo.LastModified)
	}
	if gotQuery != "s=512&d=404" {
		t.Errorf("expected sizing params, got %q", gotQuery)
	}
	if gotIfModified != "" {
		t.Errorf("expected no If-Modified-Since without a known token, got %q", gotIfModified)
	}
	if gotUserAgent == "" {
		t.Error("expected a User-Agent header")
	}
}

func TestFetchPhotoNotModified(t *testing.T) {
	const token = "Mon, 02 Jan 2006 15:04:05 GMT"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-Modified-Since") != token {
			t.Errorf("expected If-Modified-Since %q, got %q", token, r.Header.Get("If-Modified-Since"))
		}
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	client := testClient("")
	photo, err := client.FetchPhoto(context.Background(), server.URL, 512, token)
	if err != nil {
		t.Fatalf("FetchPhoto failed: %v", err)
	}

	if photo.Status != PhotoNotModified {
		t.Fatalf("expected PhotoNotModified, got %v", photo.Status)
	}
	if photo.LastModified != token {
		t.Errorf("expected known token echoed back, got %q", photo.LastModified)
	}
}

func TestFetchPhotoNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient("")
	photo, err := client.FetchPhoto(context.Background(), server.URL, 512, "")
	if err != nil {
		t.Fatalf("FetchPhoto failed: %v", err)
	}
	if photo.Status != PhotoNotFound {
		t.Fatalf("expected PhotoNotFound, got %v", photo.Status)
	}
}

func TestFetchPhotoLastModifiedFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Last-Modified header at all
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	client := testClient("")
	photo, err := client.FetchPhoto(context.Background(), server.URL, 512, "")
	if err != nil {
		t.Fatalf("FetchPhoto failed: %v", err)
	}

	if photo.LastModified == "" {
		t.Fatal("expected fallback token for hosts without Last-Modified")
	}
	if _, err := time.Parse(http.TimeFormat, photo.LastModified); err != nil {
		t.Errorf("fallback token is not a valid HTTP date: %v", err)
	}
}

func TestFetchPhotoTransportError(t *testing.T) {
	client := testClient("")
	_, err := client.FetchPhoto(context.Background(), "http://127.0.0.1:1", 512, "")
	if err == nil {
		t.Error("expected transport error")
	}
}
