package remediation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/samber/oops"
)

// HTTPClient calls an opaque remediation backend over HTTP. The backend
// contract is a single POST accepting the request document and answering
// with a status code; everything behind the endpoint is out of scope here.
type HTTPClient struct {
	endpoint string
	http     *http.Client
}

// NewHTTPClient builds a client for the given endpoint URL. A nil underlying
// http.Client gets a conservative default timeout; per-call deadlines come
// from the caller's context.
func NewHTTPClient(endpoint string, underlying *http.Client) *HTTPClient {
	if underlying == nil {
		underlying = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{endpoint: endpoint, http: underlying}
}

type remediateDocument struct {
	RequestID string `json:"requestId"`
	EntityID  string `json:"entityId"`
	Kind      string `json:"kind"`
	Target    string `json:"target"`
}

// Remediate posts the request to the backend and classifies the answer.
// Timeouts and 5xx/429 answers are transient; 4xx answers are permanent.
func (c *HTTPClient) Remediate(ctx context.Context, req Request) Result {
	if c == nil || c.endpoint == "" {
		return Result{ErrorKind: ErrorKindPermanent, Err: errors.New("remediation: no endpoint configured")}
	}
	errb := oops.
		In("remediation").
		With("request_id", req.ID).
		With("entity_id", req.EntityID).
		With("target", req.Target)

	body, err := json.Marshal(remediateDocument{
		RequestID: req.ID,
		EntityID:  req.EntityID,
		Kind:      string(req.Kind),
		Target:    req.Target,
	})
	if err != nil {
		return Result{ErrorKind: ErrorKindPermanent, Err: errb.Wrapf(err, "encode request")}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{ErrorKind: ErrorKindPermanent, Err: errb.Wrapf(err, "build request")}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Lets an idempotent backend dedupe retried deliveries.
	httpReq.Header.Set("Idempotency-Key", req.ID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Network errors and context deadlines are worth retrying.
		return Result{ErrorKind: ErrorKindTransient, Err: errb.Wrapf(err, "post remediation")}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{Success: true}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Result{
			ErrorKind: ErrorKindTransient,
			Err:       errb.With("status", resp.StatusCode).Errorf("backend answered %s", resp.Status),
		}
	default:
		return Result{
			ErrorKind: ErrorKindPermanent,
			Err:       errb.With("status", resp.StatusCode).Errorf("backend rejected remediation: %s", resp.Status),
		}
	}
}

var _ Client = (*HTTPClient)(nil)

// String identifies the client in diagnostics output.
func (c *HTTPClient) String() string {
	if c == nil {
		return "remediation.HTTPClient(nil)"
	}
	return fmt.Sprintf("remediation.HTTPClient(%s)", c.endpoint)
}
