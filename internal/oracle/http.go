package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTP is an Oracle backed by a remote signed-distance service reached
// over plain JSON/HTTP — the production collaborator config.OracleEndpoint
// points at. No third-party HTTP client is warranted here: the request
// shape is a single JSON round trip, exactly what net/http is for.
type HTTP struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTP builds an HTTP oracle with a bounded-timeout client.
func NewHTTP(endpoint string) *HTTP {
	return &HTTP{Endpoint: endpoint, Client: &http.Client{Timeout: 200 * time.Millisecond}}
}

type queryRequest struct {
	Points [][3]float64 `json:"points"`
	Frame  string       `json:"frame"`
}

type queryResponse struct {
	Gradients []Gradient `json:"gradients"`
}

func (h *HTTP) QueryGradients(ctx context.Context, points [][3]float64, frame string) ([]Gradient, error) {
	body, err := json.Marshal(queryRequest{Points: points, Frame: frame})
	if err != nil {
		return nil, fmt.Errorf("oracle: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint+"/query_gradients", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("oracle: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oracle: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oracle: unexpected status %d", resp.StatusCode)
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("oracle: decode response: %w", err)
	}
	return out.Gradients, nil
}
