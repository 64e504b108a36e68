package customer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const lookupPath = "/api/customers/"

// ErrCustomerNotFound covers every failed lookup: a non-2xx answer as well as a
// directory that could not be reached.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrBackendUnavailable is wrapped alongside ErrCustomerNotFound when the
// lookup never produced an HTTP response.
var ErrBackendUnavailable = errors.New("customer directory unavailable")

type Directory struct {
	baseURL    string
	httpClient *http.Client
}

// NewDirectory copies httpClient (http.DefaultClient when nil) and disables
// redirect following on the copy: only a direct 2xx answer counts. The client
// has no timeout of its own; lookups are bounded by the request context.
func NewDirectory(baseURL string, httpClient *http.Client) *Directory {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	client := *httpClient
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Directory{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &client,
	}
}

// Exists returns nil when the directory answers 2xx for cpf.
func (d *Directory) Exists(ctx context.Context, cpf string) error {
	endpoint := d.baseURL + lookupPath + escapeSegment(cpf)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build lookup request: %w", ErrCustomerNotFound, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		// url.Error repeats the lookup URL, which carries the CPF.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %w: %w", ErrCustomerNotFound, ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: directory responded with status %d", ErrCustomerNotFound, resp.StatusCode)
	}

	return nil
}

// escapeSegment path-escapes cpf and also encodes the dot segments, which
// url.PathEscape leaves as-is and routers resolve against the parent path.
func escapeSegment(cpf string) string {
	switch cpf {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	return url.PathEscape(cpf)
}
