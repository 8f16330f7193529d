package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	requestTimeout = 5 * time.Second

	errorCodeInvalidPatch = "JsonPatchInvalid"
)

// Client applies partial updates to named twins in the remote registry.
type Client interface {
	PatchTwin(ctx context.Context, twinID string, patch []PatchOperation) Outcome
	CreateTwin(ctx context.Context, twinID string, twin TwinDocument) Outcome
}

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewHTTPClient(baseURL, token string) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *httpClient) PatchTwin(ctx context.Context, twinID string, patch []PatchOperation) Outcome {
	return c.send(ctx, http.MethodPatch, twinID, patch)
}

func (c *httpClient) CreateTwin(ctx context.Context, twinID string, twin TwinDocument) Outcome {
	return c.send(ctx, http.MethodPut, twinID, twin)
}

func (c *httpClient) send(ctx context.Context, method, twinID string, payload interface{}) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return FailedOutcome(errors.Wrap(err, "encode twin payload"))
	}

	endpoint := fmt.Sprintf("%s/twins/%s", c.baseURL, url.PathEscape(twinID))
	request, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return FailedOutcome(errors.Wrap(err, "build twin request"))
	}
	request.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return FailedOutcome(errors.Wrap(err, "call twin registry"))
	}
	defer response.Body.Close()

	return outcomeFromResponse(response)
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func outcomeFromResponse(response *http.Response) Outcome {
	switch {
	case response.StatusCode >= http.StatusOK && response.StatusCode < http.StatusMultipleChoices:
		return AppliedOutcome()
	case response.StatusCode == http.StatusNotFound:
		return NotFoundOutcome()
	case response.StatusCode == http.StatusBadRequest:
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && payload.Error.Code == errorCodeInvalidPatch {
			return UninitializedFieldOutcome()
		}
		return FailedOutcome(fmt.Errorf("twin registry rejected request: status %d", response.StatusCode))
	default:
		return FailedOutcome(fmt.Errorf("twin registry error: status %d", response.StatusCode))
	}
}
