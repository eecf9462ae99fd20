// ABOUTME: Remote directory client for the OAuth-protected identity provider
// ABOUTME: Fetches the full user list as typed records with bearer authentication
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dirsync/models"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// Sentinel errors surfaced to the sync engine. Unauthorized is kept distinct
// so the caller can trigger re-authentication instead of a blind retry.
var (
	ErrUnauthorized       = errors.New("directory: unauthorized")
	ErrServiceUnavailable = errors.New("directory: service unavailable")
)

// Config holds the identity provider endpoints.
type Config struct {
	UsersURL string
}

// Client fetches directory records from the identity provider's user-info
// API. Photo downloads use a separate unauthenticated HTTP client since
// photo hosts take no bearer credential.
type Client struct {
	cfg        Config
	httpClient *http.Client
	photos     *http.Client
	logger     *log.Logger
}

// NewClient builds a directory client around an OAuth token. The token is
// consumed as-is; acquisition and refresh belong to the login flow.
func NewClient(cfg Config, config *oauth2.Config, token *oauth2.Token) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: config.Client(context.Background(), token),
		photos:     &http.Client{Timeout: 30 * time.Second},
		logger:     log.With("component", "directory"),
	}
}

// userInfo is the wire format of one directory entry.
type userInfo struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	PhoneNumber string `json:"phone_number"`
	FixedPhone  string `json:"fixed_phone_number"`
	PhotoURL    string `json:"photo_url"`
}

// FetchUsers fetches the full set of current directory records whose country
// code is enabled in the scope. The email doubles as the stable source ID.
func (c *Client) FetchUsers(ctx context.Context, scope models.Scope) ([]models.RemoteContact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UsersURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized:
		challenge := resp.Header.Get("WWW-Authenticate")
		return nil, fmt.Errorf("user fetch rejected (%s): %w", challenge, ErrUnauthorized)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("user fetch failed with status %d: %w", resp.StatusCode, ErrServiceUnavailable)
	default:
		return nil, fmt.Errorf("unhandled response code %d", resp.StatusCode)
	}

	var infos []userInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("failed to decode user list: %w", err)
	}

	contacts := make([]models.RemoteContact, 0, len(infos))
	skipped := 0
	for _, u := range infos {
		if u.Email == "" {
			skipped++
			continue
		}
		if !scope.Includes(u.CountryCode) {
			continue
		}
		contacts = append(contacts, models.RemoteContact{
			SourceID:    u.Email,
			Name:        u.Name,
			CountryCode: u.CountryCode,
			Email:       u.Email,
			PhoneMobile: u.PhoneNumber,
			PhoneFixed:  u.FixedPhone,
			PhotoURL:    u.PhotoURL,
		})
	}
	if skipped > 0 {
		c.logger.Warn("skipped users without email", "count", skipped)
	}

	return contacts, nil
}

// FetchPhoto downloads a contact photo, conditional on the previously seen
// Last-Modified value. Photo URLs are sized Gravatar-style with s=<dim> and
// d=404 so missing photos come back as 404 rather than a placeholder image.
func (c *Client) FetchPhoto(ctx context.Context, ref string, maxDim int, lastModified string) (*Photo, error) {
	url := fmt.Sprintf("%s?s=%d&d=404", ref, maxDim)
	return fetchPhoto(ctx, c.photos, url, lastModified)
}
