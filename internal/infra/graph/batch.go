package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/TimLeitch/ms-contact-sync/internal/domain/service"

	"github.com/pkg/errors"
)

// batchEnvelope is the request body of a $batch call.
type batchEnvelope struct {
	Requests []service.BatchRequest `json:"requests"`
}

// batchResponse is one correlated sub-response. Bodies are raw because the
// $count endpoints return bare scalars, not objects.
type batchResponse struct {
	ID     string          `json:"id"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Batch partitions the requests into chunks of at most batchSize (the
// remote API caps $batch at 20) and posts each chunk separately. Responses
// are correlated strictly by ID: the remote API does not guarantee the
// response order matches the request order. A chunk-level failure (non-200
// status or timeout) marks every ID of that chunk as failed and processing
// continues with the remaining chunks, so partial results survive.
func (c *Client) Batch(ctx context.Context, token string, requests []service.BatchRequest) (map[string]service.BatchResult, error) {
	results := make(map[string]service.BatchResult, len(requests))

	for start := 0; start < len(requests); start += c.batchSize {
		end := min(start+c.batchSize, len(requests))
		chunk := requests[start:end]

		responses, err := c.postChunk(ctx, token, chunk)
		if err != nil {
			c.logger.Error("Batch chunk failed", slog.Int("size", len(chunk)), slog.Any("error", err))
			timedOut := isTimeout(err)
			for _, req := range chunk {
				results[req.ID] = service.BatchResult{Failed: true, Timeout: timedOut}
			}

			continue
		}

		for _, resp := range responses {
			if _, known := resultIDKnown(chunk, resp.ID); !known {
				c.logger.Error("Unknown batch response ID", slog.String("id", resp.ID))

				continue
			}
			results[resp.ID] = service.BatchResult{Status: resp.Status, Body: resp.Body}
		}
	}

	return results, nil
}

func (c *Client) postChunk(ctx context.Context, token string, chunk []service.BatchRequest) ([]batchResponse, error) {
	payload, err := json.Marshal(batchEnvelope{Requests: chunk})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode batch payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/$batch", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create batch request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "batch request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("batch returned status %s", resp.Status)
	}

	var envelope struct {
		Responses []batchResponse `json:"responses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, errors.Wrap(err, "failed to decode batch response")
	}

	return envelope.Responses, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func resultIDKnown(chunk []service.BatchRequest, id string) (service.BatchRequest, bool) {
	for _, req := range chunk {
		if req.ID == id {
			return req, true
		}
	}

	return service.BatchRequest{}, false
}
