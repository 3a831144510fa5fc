// Package fleet wraps the fleet operations backend: vehicle, booking,
// driver, rating and airport-zone lookups. "Not found" is a nil record, not
// an error; only transport failures error out, mapped into the adapter
// failure category.
package fleet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 2 << 20
)

type Client struct {
	HTTP     *http.Client
	BaseURL  string
	APIToken string
}

func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		HTTP:     &http.Client{Timeout: timeout},
		BaseURL:  strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		APIToken: apiToken,
	}
}

// getJSON performs a GET against the backend and decodes the body into out.
// Returns found=false (no error) on 404 or an empty 200 body.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fderrors.Wrap(err, "build fleet request")
	}
	req.Header.Set("Accept", "application/json")
	if c.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
	}

	client := c.HTTP
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, fderrors.MapAdapterError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return false, fderrors.AdapterFailure(fmt.Sprintf("fleet request failed: %s %s", path, resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, fderrors.MapAdapterError(err)
	}
	if len(strings.TrimSpace(string(body))) == 0 || string(body) == "null" {
		return false, nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fderrors.AdapterFailure("decode fleet response: " + err.Error())
	}

	return true, nil
}
