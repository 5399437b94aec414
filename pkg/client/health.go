package client

import (
	"context"
	"net/http"
)

// ServiceInfo is what the API root answers with
type ServiceInfo struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Message string `json:"message"`
}

// HealthResponse is the payload of the readiness probe
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

// Info fetches the service banner from the API root
func (c *Client) Info(ctx context.Context) (*ServiceInfo, error) {
	var info ServiceInfo
	if err := c.doRequest(ctx, http.MethodGet, "/", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Health checks whether the API is ready to serve requests
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp envelope[HealthResponse]
	if err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}
