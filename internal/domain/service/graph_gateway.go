package service

import (
	"context"
	"encoding/json"
	"net/url"
)

// BatchRequest is one sub-request of a Graph $batch call. ID is a synthetic
// correlation key ("request-<i>") assigned by the caller.
type BatchRequest struct {
	ID      string            `json:"id"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// BatchResult is the outcome of one sub-request, correlated by ID. Failed
// reports chunk-level failure of the whole chunk; Timeout narrows the
// failure to a chunk that timed out rather than one the remote rejected.
type BatchResult struct {
	Status  int
	Body    json.RawMessage
	Failed  bool
	Timeout bool
}

// GraphGateway wraps outbound calls to the Graph REST API. All methods are
// stateless pass-throughs differing only in result-assembly strategy.
type GraphGateway interface {
	// Get fetches a single resource. A remote 403 surfaces as
	// errors.ErrGraphForbidden; other non-200 statuses as wrapped errors.
	Get(ctx context.Context, token, path string, query url.Values) (json.RawMessage, error)

	// GetAll fetches a collection, following @odata.nextLink until
	// exhausted, and returns the accumulated value arrays.
	GetAll(ctx context.Context, token, path string, query url.Values) ([]json.RawMessage, error)

	// Batch partitions the requests into chunks of at most 20, posts each
	// chunk to the $batch endpoint, and correlates sub-responses back by ID.
	// A chunk-level failure marks only that chunk's IDs as failed; other
	// chunks are unaffected and the call never returns a transport error
	// for individual chunks.
	Batch(ctx context.Context, token string, requests []BatchRequest) (map[string]BatchResult, error)
}
