package control

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/lanikai/mosaic"
)

// Client calls the HTTP control API of a running daemon.
type Client struct {
	// Base URL of the daemon, e.g. "http://localhost:8080".
	BaseURL string

	HTTP *http.Client
}

func NewClient(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    http.DefaultClient,
	}
}

func (c *Client) Start(ctx context.Context) (mosaic.Status, error) {
	return c.do(ctx, http.MethodPost, "/start")
}

func (c *Client) Stop(ctx context.Context) (mosaic.Status, error) {
	return c.do(ctx, http.MethodPost, "/stop")
}

func (c *Client) Status(ctx context.Context) (mosaic.Status, error) {
	return c.do(ctx, http.MethodGet, "/status")
}

func (c *Client) do(ctx context.Context, method, path string) (mosaic.Status, error) {
	var status mosaic.Status

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return status, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return status, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return status, errors.Errorf("%s %s: %s", method, path, e.Error)
		}
		return status, errors.Errorf("%s %s: %s", method, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return status, errors.Wrap(err, "decode status")
	}
	return status, nil
}
