// Package backend talks to the monitoring backend: snapshot fetches and the
// poll loop that keeps the engine fed.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/model"
	"github.com/netobserve/topoview/pkg/reconcile"
)

// Client fetches snapshots from the monitoring backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// NewClient creates a backend client.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With(logging.Component("backend")),
	}
}

// DevicesSnapshot fetches the device list.
func (c *Client) DevicesSnapshot(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := c.getJSON(ctx, "/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// TopologySnapshot fetches devices plus connections.
func (c *Client) TopologySnapshot(ctx context.Context) (*reconcile.Snapshot, error) {
	var snap reconcile.Snapshot
	if err := c.getJSON(ctx, "/api/topology", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
