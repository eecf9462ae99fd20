// ABOUTME: OAuth configuration and token management for the identity provider
// ABOUTME: Handles OAuth flow endpoints and token storage at XDG paths
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// NewOAuthConfig builds the OAuth2 config from environment variables.
// DIRSYNC_AUTH_URL and DIRSYNC_TOKEN_URL point at the identity provider;
// when unset the Google endpoint is used (for the Google People provider).
func NewOAuthConfig() *oauth2.Config {
	endpoint := google.Endpoint
	if authURL := os.Getenv("DIRSYNC_AUTH_URL"); authURL != "" {
		endpoint = oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: os.Getenv("DIRSYNC_TOKEN_URL"),
		}
	}

	scopes := []string{"https://www.googleapis.com/auth/contacts.readonly"}
	if s := os.Getenv("DIRSYNC_SCOPES"); s != "" {
		scopes = strings.Fields(s)
	}

	return &oauth2.Config{
		ClientID:     os.Getenv("DIRSYNC_CLIENT_ID"),
		ClientSecret: os.Getenv("DIRSYNC_CLIENT_SECRET"),
		RedirectURL:  "http://localhost:8080/oauth/callback",
		Scopes:       scopes,
		Endpoint:     endpoint,
	}
}

// TokenPath returns the XDG-compliant path for storing OAuth tokens.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "dirsync", "credentials.json")
}

// SaveToken saves an OAuth token to the XDG data directory.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	// Restricted permissions, the refresh token is a long-lived credential
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// LoadToken loads the stored OAuth token, or an error if none is saved.
func LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no saved credentials, run 'dirsync login' first")
		}
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return token, nil
}
