package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"docqa/internal/domain"
)

// Client is a small HTTP client for the query endpoint, scoped to one tenant.
type Client struct {
	baseURL   string
	tenantID  string
	topK      int
	threshold float32
	http      *http.Client
}

func NewClient(baseURL, tenantID string, topK int, threshold float32) *Client {
	return &Client{
		baseURL:   baseURL,
		tenantID:  tenantID,
		topK:      topK,
		threshold: threshold,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Query(question string) ([]domain.Result, error) {
	payload, err := json.Marshal(map[string]any{
		"tenant_id":            c.tenantID,
		"question":             question,
		"top_k":                c.topK,
		"similarity_threshold": c.threshold,
	})
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Post(c.baseURL+"/api/query", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return nil, fmt.Errorf("query failed: %s", apiErr.Error)
		}
		return nil, fmt.Errorf("query failed: %s", resp.Status)
	}
	var body struct {
		Results []domain.Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Results, nil
}
