// ABOUTME: Directory client tests against a fake identity provider
// ABOUTME: Covers bearer auth, error taxonomy, and scope filtering
package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dirsync/models"

	"golang.org/x/oauth2"
)

func testClient(usersURL string) *Client {
	cfg := &oauth2.Config{}
	token := &oauth2.Token{AccessToken: "test-token"}
	return NewClient(Config{UsersURL: usersURL}, cfg, token)
}

func testScope() models.Scope {
	return models.Scope{Account: "work", Regions: []string{"se", "us"}}
}

func TestFetchUsers(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"email": "alice@example.com", "name": "Alice", "country_code": "se", "phone_number": "555-1234"},
			{"email": "bob@example.com", "name": "Bob", "country_code": "us", "fixed_phone_number": "555-0000", "photo_url": "https://photos.example.com/bob"},
			{"email": "chloe@example.com", "name": "Chloe", "country_code": "fr"},
			{"email": "", "name": "No Email", "country_code": "se"}
		]`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	contacts, err := client.FetchUsers(context.Background(), testScope())
	if err != nil {
		t.Fatalf("FetchUsers failed: %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}

	if len(contacts) != 2 {
		t.Fatalf("expected 2 in-scope contacts, got %d", len(contacts))
	}
	if contacts[0].SourceID != "alice@example.com" {
		t.Errorf("expected email as source ID, got %q", contacts[0].SourceID)
	}
	if contacts[0].PhoneMobile != "555-1234" {
		t.Errorf("expected mobile phone mapped, got %q", contacts[0].PhoneMobile)
	}
	if contacts[1].PhoneFixed != "555-0000" {
		t.Errorf("expected fixed phone mapped, got %q", contacts[1].PhoneFixed)
	}
	if contacts[1].PhotoURL != "https://photos.example.com/bob" {
		t.Errorf("expected photo URL mapped, got %q", contacts[1].PhotoURL)
	}
}

func TestFetchUsersUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchUsers(context.Background(), testScope())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestFetchUsersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchUsers(context.Background(), testScope())
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("expected ErrServiceUnavailable, got %v", err)
	}
}

func TestFetchUsersUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.FetchUsers(context.Background(), testScope())
	if err == nil {
		t.Error("expected error for unhandled status code")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("unexpected sentinel match for teapot status: %v", err)
	}
}
