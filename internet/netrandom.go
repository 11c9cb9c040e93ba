package internet

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseSize caps how much of a service response is read.
const maxResponseSize = 1 << 20

// service is the shared plumbing for remote random-bit services. Remote
// services are entropy sources only, they are never used as a seed store.
type service struct {
	host   string
	client *http.Client
}

func newService(host string) *service {
	return &service{
		host: host,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// connectRPC posts a JSON-RPC request body and returns the raw response.
func (s *service) connectRPC(url string, body []byte) ([]byte, error) {
	resp, err := s.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", s.host, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", s.host, err)
	}
	return data, nil
}
