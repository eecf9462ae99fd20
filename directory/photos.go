// ABOUTME: Conditional contact photo download with Last-Modified change tokens
// ABOUTME: Returns tagged results so "not found" and "not modified" are not errors
package directory

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PhotoStatus tags the outcome of a conditional photo fetch.
type PhotoStatus int

const (
	PhotoOK PhotoStatus = iota
	PhotoNotModified
	PhotoNotFound
)

// Photo is the result of a conditional photo fetch. LastModified is the
// change token to persist; on PhotoNotModified it echoes the known token.
type Photo struct {
	Status       PhotoStatus
	Data         []byte
	LastModified string
}

// fetchPhoto performs the conditional GET shared by all providers.
// Errors are transport failures only; expected outcomes (304, 404) are
// tagged in the result.
func fetchPhoto(ctx context.Context, client *http.Client, url, lastModified string) (*Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}
	// Some photo hosts reject requests without a User-Agent.
	req.Header.Set("User-Agent", "dirsync")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch photo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo body: %w", err)
		}
		return &Photo{Status: PhotoOK, Data: data, LastModified: lastModifiedHeader(resp)}, nil

	case http.StatusNotModified:
		return &Photo{Status: PhotoNotModified, LastModified: lastModified}, nil

	case http.StatusNotFound:
		return &Photo{Status: PhotoNotFound}, nil

	default:
		return nil, fmt.Errorf("unhandled photo response code %d", resp.StatusCode)
	}
}

// lastModifiedHeader extracts the change token from a 200 response. Hosts
// that omit the header get the current HTTP date so the next pass can still
// send a valid If-Modified-Since.
func lastModifiedHeader(resp *http.Response) string {
	if v := resp.Header.Get("Last-Modified"); v != "" {
		return v
	}
	return time.Now().UTC().Format(http.TimeFormat)
}
