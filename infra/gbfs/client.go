package gbfs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/dockflow/auth"
)

// Config locates the feeds.
type Config struct {
	StationInformationURL string `json:"station_information_url"`
	StationStatusURL      string `json:"station_status_url"`
	TimeoutSeconds        int    `json:"timeout_seconds"`
	PollIntervalSeconds   int    `json:"poll_interval_seconds"`
	StaleAfterSeconds     int    `json:"stale_after_seconds"`
	// SnapshotDir, when set, receives the raw payloads of every accepted poll.
	SnapshotDir string `json:"snapshot_dir"`
	// Auth enables OAuth2 client credentials for private feeds.
	Auth auth.Conf `json:"auth"`
}

// SetDefaults fills zero values with the Citi Bike feeds.
func (c *Config) SetDefaults() {
	if c.StationInformationURL == "" {
		c.StationInformationURL = "https://gbfs.citibikenyc.com/gbfs/en/station_information.json"
	}
	if c.StationStatusURL == "" {
		c.StationStatusURL = "https://gbfs.citibikenyc.com/gbfs/en/station_status.json"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 60
	}
	if c.StaleAfterSeconds <= 0 {
		c.StaleAfterSeconds = int(DefaultStaleAfter / time.Second)
	}
}

// Client fetches raw GBFS payloads.
type Client struct {
	http      *http.Client
	creds     *auth.ClientCred
	infoURL   string
	statusURL string
}

// NewClient creates a client for cfg.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	c := &Client{
		http:      &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		infoURL:   cfg.StationInformationURL,
		statusURL: cfg.StationStatusURL,
	}
	if cfg.Auth.Enabled() {
		c.creds = auth.NewClientCred(cfg.Auth)
	}
	return c
}

// FetchInformation downloads station_information.
func (c *Client) FetchInformation(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.infoURL)
}

// FetchStatus downloads station_status.
func (c *Client) FetchStatus(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.statusURL)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.creds != nil {
		if err := c.creds.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", url, err)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
