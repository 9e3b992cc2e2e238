// Package upstream talks to the third-party weather API. The API's
// response schema is undocumented and inconsistent, so both endpoints
// return untyped JSON values; shape detection happens downstream.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "wxhist-server/1.0"

type Client struct {
	rc *resty.Client
}

// New builds a client for the given base URL. The timeout applies per
// upstream call; there is no retry here, candidate-code iteration is the
// only retry mechanism in the system.
func New(baseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout)
	return &Client{rc: rc}
}

// Stations fetches the raw station listing.
func (c *Client) Stations(ctx context.Context) (any, error) {
	return c.get(ctx, "/stations", nil)
}

// History fetches raw observation rows for one candidate station code.
func (c *Client) History(ctx context.Context, code string) (any, error) {
	return c.get(ctx, "/historical_weather", map[string]string{"station": code})
}

func (c *Client) get(ctx context.Context, path string, params map[string]string) (any, error) {
	req := c.rc.R().SetContext(ctx)
	if params != nil {
		req.SetQueryParams(params)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GET %s: upstream status %d", path, resp.StatusCode())
	}

	return decodeBody(resp.Body()), nil
}

// decodeBody handles the upstream's habit of double-encoding: the body may
// be a JSON value, a JSON string that itself contains JSON, or plain text.
// Undecodable bodies degrade to a literal string value, never an error.
func decodeBody(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return string(body)
	}

	if s, ok := v.(string); ok {
		var inner any
		if err := json.Unmarshal([]byte(s), &inner); err == nil {
			return inner
		}
		return s
	}

	return v
}
