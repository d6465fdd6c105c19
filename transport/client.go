package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	clientTimeout         = 20 * time.Second
	dialTimeout           = 5 * time.Second
	keepAlive             = 30 * time.Second
	responseHeaderTimeout = 10 * time.Second
	idleConnTimeout       = 90 * time.Second

	// TracksPath serves the current snapshot.
	TracksPath = "/tracks"
	// WatchPath upgrades to a websocket that pushes every snapshot.
	WatchPath = "/ws"
)

var httpTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: keepAlive,
	}).DialContext,
	ResponseHeaderTimeout: responseHeaderTimeout,
	IdleConnTimeout:       idleConnTimeout,
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout:   clientTimeout,
		Transport: httpTransport,
	}
}

func newRetryableHTTPClient(retryMax int) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = time.Second
	retryClient.Logger = nil
	retryClient.HTTPClient = newHTTPClient()

	return retryClient.StandardClient()
}

// Client fetches snapshots from a publishing server. 5xx and 429 responses
// are retried.
type Client struct {
	BaseURL   string
	LogOutput io.Writer

	http        *http.Client
	initLogOnce sync.Once
	logger      zerolog.Logger
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string, retryMax int) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    newRetryableHTTPClient(retryMax),
	}
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (c *Client) Log() *zerolog.Logger {
	if c.LogOutput != nil {
		c.initLogOnce.Do(func() {
			c.logger = zerolog.New(c.LogOutput).With().Timestamp().Logger()
		})
	}
	return &c.logger
}

// Fetch returns the snapshot currently published by the server.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+TracksPath, nil)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "Fetch")
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		c.Log().Error().Str("function", "Fetch").Str("Action", "Do").Err(err).Msg("")
		return Snapshot{}, errors.Wrap(err, "Fetch")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("Fetch: unexpected status %s", res.Status)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "Fetch")
	}

	snap, err := Decode(data)
	if err != nil {
		c.Log().Error().Str("function", "Fetch").Str("Action", "Decode").Err(err).Msg("")
		return Snapshot{}, err
	}

	c.Log().Debug().Str("function", "Fetch").Str("ID", snap.ID.String()).Int("Groups", snap.Tracks.Len()).Msg("fetched")
	return snap, nil
}
