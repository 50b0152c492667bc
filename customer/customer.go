/*
Package customer resolves customer identity and segment.

PURPOSE:
  Account creation rules depend on the customer's segment (PERSONAL or
  BUSINESS), which is owned by a separate customer service. This package
  defines the Directory port the product services depend on, an HTTP
  client implementation against the customer service, and a static
  in-memory directory for tests.

SEE ALSO:
  - loan/: enforces segment rules on loan creation
  - card/: enforces segment rules on card issuance
*/
package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Type is the customer segment.
type Type string

const (
	Personal Type = "PERSONAL"
	Business Type = "BUSINESS"
)

// Customer is the subset of the customer record the billing side needs.
type Customer struct {
	ID   string `json:"id"`
	Type Type   `json:"customerType"`
}

// ErrNotFound is returned when the directory has no such customer.
var ErrNotFound = errors.New("customer not found")

// Directory looks up customers by id.
type Directory interface {
	Get(ctx context.Context, id string) (*Customer, error)
}

// =============================================================================
// HTTP CLIENT - Against the external customer service
// =============================================================================

// Client is an HTTP Directory backed by the customer service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL
// (e.g. "http://localhost:8085").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) Get(ctx context.Context, id string) (*Customer, error) {
	url := fmt.Sprintf("%s/api/customers/%s", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building customer request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling customer service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("customer service returned %d for %s", resp.StatusCode, id)
	}

	var cust Customer
	if err := json.NewDecoder(resp.Body).Decode(&cust); err != nil {
		return nil, fmt.Errorf("decoding customer %s: %w", id, err)
	}
	return &cust, nil
}

// =============================================================================
// STATIC DIRECTORY - Fixed map, for tests and development
// =============================================================================

// Static is a Directory backed by a fixed map.
type Static struct {
	customers map[string]Customer
}

func NewStatic(customers ...Customer) *Static {
	s := &Static{customers: make(map[string]Customer, len(customers))}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

func (s *Static) Get(_ context.Context, id string) (*Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &c, nil
}
