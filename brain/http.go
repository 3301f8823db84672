package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSource polls an inference service over HTTP. The service replies 200
// with an Inference payload when it has an opinion and 204 when it does not.
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) (*Inference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch inference: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("inference service status %d: %s", resp.StatusCode, string(raw))
	}

	var inf Inference
	if err := json.NewDecoder(resp.Body).Decode(&inf); err != nil {
		return nil, fmt.Errorf("decode inference: %w", err)
	}
	return &inf, nil
}
