package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rmax-ai/smoglight/pkg/session"
	"github.com/rmax-ai/smoglight/pkg/sim"
)

// Client is the smoglight SDK client. The TUI, CLI and MCP server all go
// through it; nothing outside the daemon touches the session directly.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a new smoglight client.
// endpoint defaults to "http://127.0.0.1:8094" if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = "http://127.0.0.1:8094"
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// GetState fetches the current session reading.
func (c *Client) GetState(ctx context.Context) (session.Reading, error) {
	return c.getReading(ctx, "/v1/state")
}

// GetReading fetches the latest published reading (the reading-store view).
func (c *Client) GetReading(ctx context.Context) (session.Reading, error) {
	return c.getReading(ctx, "/v1/reading")
}

// GetConfig fetches the session configuration.
func (c *Client) GetConfig(ctx context.Context) (sim.Config, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+"/v1/config", nil)
	if err != nil {
		return sim.Config{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return sim.Config{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return sim.Config{}, fmt.Errorf("config status %d", resp.StatusCode)
	}

	var cfg sim.Config
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return sim.Config{}, err
	}
	return cfg, nil
}

// Step advances the session by dt seconds.
func (c *Client) Step(ctx context.Context, dt float64) (session.Reading, error) {
	return c.postReading(ctx, "/v1/step", map[string]float64{"dt": dt})
}

// SetPhase sets the signal phase to red or green.
func (c *Client) SetPhase(ctx context.Context, phase sim.Phase) (session.Reading, error) {
	return c.postReading(ctx, "/v1/phase", map[string]string{"phase": string(phase)})
}

// TogglePhase flips the signal phase.
func (c *Client) TogglePhase(ctx context.Context) (session.Reading, error) {
	return c.postReading(ctx, "/v1/phase/toggle", nil)
}

// SetVehicles updates the vehicle count.
func (c *Client) SetVehicles(ctx context.Context, count int) (session.Reading, error) {
	return c.postReading(ctx, "/v1/vehicles", map[string]int{"count": count})
}

// SetRunning starts or pauses the daemon's auto-refresh loop.
func (c *Client) SetRunning(ctx context.Context, running bool) (session.Reading, error) {
	return c.postReading(ctx, "/v1/run", map[string]bool{"running": running})
}

// Reset returns the session to the fresh-air baseline.
func (c *Client) Reset(ctx context.Context) (session.Reading, error) {
	return c.postReading(ctx, "/v1/reset", nil)
}

func (c *Client) getReading(ctx context.Context, path string) (session.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.endpoint+path, nil)
	if err != nil {
		return session.Reading{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return session.Reading{}, err
	}
	defer resp.Body.Close()

	return decodeReading(resp)
}

func (c *Client) postReading(ctx context.Context, path string, body interface{}) (session.Reading, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return session.Reading{}, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+path, &buf)
	if err != nil {
		return session.Reading{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return session.Reading{}, err
	}
	defer resp.Body.Close()

	return decodeReading(resp)
}

func decodeReading(resp *http.Response) (session.Reading, error) {
	if resp.StatusCode == 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return session.Reading{}, fmt.Errorf("%w: %s", sim.ErrInvalidConfig, errResp.Error)
		}
		return session.Reading{}, fmt.Errorf("bad request")
	}
	if resp.StatusCode != 200 {
		return session.Reading{}, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var r session.Reading
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return session.Reading{}, err
	}
	return r, nil
}
