// ABOUTME: Google People API directory provider
// ABOUTME: Adapts People connections to directory records for the sync engine
package directory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dirsync/models"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// GoogleDirectory serves directory records from the Google People API
// instead of a dedicated identity provider.
type GoogleDirectory struct {
	svc    *people.Service
	photos *http.Client
}

// NewGoogleDirectory creates a People-API-backed directory client.
func NewGoogleDirectory(ctx context.Context, config *oauth2.Config, token *oauth2.Token) (*GoogleDirectory, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}

	client := config.Client(ctx, token)
	svc, err := people.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return &GoogleDirectory{
		svc:    svc,
		photos: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// FetchUsers fetches connections with pagination and maps them to directory
// records. Connections without an email are skipped since the email is the
// stable source ID.
func (g *GoogleDirectory) FetchUsers(ctx context.Context, scope models.Scope) ([]models.RemoteContact, error) {
	var contacts []models.RemoteContact
	pageToken := ""

	for {
		call := g.svc.People.Connections.List("people/me").
			PageSize(1000).
			PersonFields("names,emailAddresses,phoneNumbers,addresses,photos").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		response, err := call.Do()
		if err != nil {
			return nil, mapGoogleError(err)
		}
		if response == nil || response.Connections == nil {
			break
		}

		for _, person := range response.Connections {
			rc := convertPerson(person)
			if rc.SourceID == "" {
				continue
			}
			if !scope.Includes(rc.CountryCode) {
				continue
			}
			contacts = append(contacts, rc)
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return contacts, nil
}

// FetchPhoto downloads a People photo URL conditionally. People photo URLs
// take an =s<dim> suffix to bound the returned dimension.
func (g *GoogleDirectory) FetchPhoto(ctx context.Context, ref string, maxDim int, lastModified string) (*Photo, error) {
	url := fmt.Sprintf("%s=s%d", ref, maxDim)
	return fetchPhoto(ctx, g.photos, url, lastModified)
}

func mapGoogleError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("people fetch rejected: %w", ErrUnauthorized)
		case apiErr.Code >= 500:
			return fmt.Errorf("people fetch failed with status %d: %w", apiErr.Code, ErrServiceUnavailable)
		}
	}
	return fmt.Errorf("failed to fetch connections: %w", err)
}

// convertPerson maps a People API Person to a directory record.
func convertPerson(person *people.Person) models.RemoteContact {
	rc := models.RemoteContact{}

	if len(person.Names) > 0 && person.Names[0].DisplayName != "" {
		rc.Name = person.Names[0].DisplayName
	}

	// Prefer the primary email, otherwise first available
	for _, email := range person.EmailAddresses {
		if email.Value == "" {
			continue
		}
		if rc.Email == "" {
			rc.Email = email.Value
		}
		if email.Metadata != nil && email.Metadata.Primary {
			rc.Email = email.Value
			break
		}
	}
	rc.SourceID = rc.Email

	for _, phone := range person.PhoneNumbers {
		if phone.Value == "" {
			continue
		}
		switch phone.Type {
		case "mobile", "workMobile":
			if rc.PhoneMobile == "" {
				rc.PhoneMobile = phone.Value
			}
		default:
			if rc.PhoneFixed == "" {
				rc.PhoneFixed = phone.Value
			}
		}
	}

	for _, addr := range person.Addresses {
		if addr.CountryCode != "" {
			rc.CountryCode = addr.CountryCode
			break
		}
	}

	// Skip auto-generated default avatars, they carry no directory photo
	for _, photo := range person.Photos {
		if photo.Url != "" && !photo.Default {
			rc.PhotoURL = photo.Url
			break
		}
	}

	return rc
}
