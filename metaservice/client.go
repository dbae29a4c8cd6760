package metaservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/evanofslack/dns-manager-sync/api"
	"github.com/evanofslack/dns-manager-sync/metrics"
)

// Client talks to the manager's metadata service. Metadata and batch tag
// operations live here rather than at the DNS providers; a batch call carries
// the whole cross-account selection in one request.
type Client interface {
	UpdateMetadata(ctx context.Context, accountID, domainID string, patch api.MetadataPatch) (api.Metadata, error)
	BatchTags(ctx context.Context, targets []api.BatchTarget, tags []string, mode api.TagMode) (api.BatchResult, error)
}

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

type client struct {
	baseURL string
	token   string
	http    Httper
	metrics *metrics.Metrics
}

func New(baseURL, token string, m *metrics.Metrics) Client {
	return &client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{},
		metrics: m,
	}
}

type batchRequest struct {
	Targets []api.BatchTarget `json:"targets"`
	Tags    []string          `json:"tags"`
	Mode    api.TagMode       `json:"mode"`
}

func (c *client) UpdateMetadata(ctx context.Context, accountID, domainID string, patch api.MetadataPatch) (api.Metadata, error) {
	url := fmt.Sprintf("%s/v1/accounts/%s/domains/%s/metadata", c.baseURL, accountID, domainID)

	var meta api.Metadata
	err := c.do(ctx, http.MethodPatch, url, patch, &meta)
	c.metrics.IncMetaRequest("update_metadata", err == nil)
	if err != nil {
		return api.Metadata{}, err
	}
	return meta, nil
}

func (c *client) BatchTags(ctx context.Context, targets []api.BatchTarget, tags []string, mode api.TagMode) (api.BatchResult, error) {
	url := c.baseURL + "/v1/domains/tags:batch"
	body := batchRequest{Targets: targets, Tags: tags, Mode: mode}

	var result api.BatchResult
	err := c.do(ctx, http.MethodPost, url, body, &result)
	c.metrics.IncMetaRequest("batch_tags", err == nil)
	if err != nil {
		return api.BatchResult{}, err
	}
	return result, nil
}

func (c *client) do(ctx context.Context, method, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("metadata service request, status=%d: %w", resp.StatusCode, api.ErrCredentialRejected)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var apiErr api.Error
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Code != "" {
			return &apiErr
		}
		return fmt.Errorf("metadata service request, status=%d", resp.StatusCode)
	default:
		return fmt.Errorf("metadata service request, status=%d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse metadata service response: %w", err)
	}
	return nil
}
