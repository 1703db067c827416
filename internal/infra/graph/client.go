// Package graph implements the outbound gateway to the Microsoft Graph
// REST API: single fetch, nextLink-following pagination, and $batch fan-out.
package graph

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/TimLeitch/ms-contact-sync/config"
	domainerrors "github.com/TimLeitch/ms-contact-sync/internal/domain/errors"
	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"

	"github.com/pkg/errors"
)

// Client is a stateless wrapper around the Graph REST API. All state lives
// in the request: the bearer token is passed per call, never stored.
type Client struct {
	baseURL   string
	batchSize int

	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient is the constructor for Client.
func NewClient(cfg *config.Config, logger *slog.Logger) service.GraphGateway {
	return &Client{
		baseURL:    strings.TrimRight(cfg.Graph.BaseURL, "/"),
		batchSize:  cfg.Graph.BatchSize,
		httpClient: &http.Client{Timeout: cfg.Graph.Timeout},
		logger:     logger,
	}
}

// listResponse is the envelope of every Graph collection response.
type listResponse struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"@odata.nextLink"`
}

// Get fetches a single resource. A 403 is a typed outcome with a specific
// remediation (grant API permissions); everything else non-200 is a
// transient failure.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return c.get(ctx, token, target)
}

// GetAll fetches a collection, following @odata.nextLink until no link
// remains, and accumulates the value arrays across pages. There is no page
// bound; an unbounded remote collection grows the result without limit.
func (c *Client) GetAll(ctx context.Context, token, path string, query url.Values) ([]json.RawMessage, error) {
	next := c.baseURL + path
	if len(query) > 0 {
		next += "?" + query.Encode()
	}

	var all []json.RawMessage
	for next != "" {
		body, err := c.get(ctx, token, next)
		if err != nil {
			return nil, err
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, errors.Wrap(err, "failed to decode collection page")
		}

		all = append(all, page.Value...)
		next = page.NextLink
	}

	return all, nil
}

func (c *Client) get(ctx context.Context, token, target string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create graph request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("ConsistencyLevel", "eventual")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.ErrGraphUnavailable.WrapMessage(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read graph response")
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, domainerrors.ErrGraphForbidden.WrapMessage(string(body))
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("Graph request failed",
			slog.String("url", target),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)))

		return nil, domainerrors.ErrGraphUnavailable.WrapMessage("graph returned status " + resp.Status)
	}

	return body, nil
}
