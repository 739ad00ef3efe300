package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elimelt/ha-redis/lib/loadgen"
)

// --------------------------------------------------------------------------
// Client configuration
// --------------------------------------------------------------------------

// ClientConfig holds the connection parameters for the REST client.
type ClientConfig struct {
	Endpoints     []string
	TimeoutSecond int
	RetryCount    int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))

	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// OpResponse is the JSON shape every data route responds with.
type OpResponse struct {
	Success   bool        `json:"success"`
	Operation string      `json:"operation"`
	Key       string      `json:"key"`
	Value     interface{} `json:"value,omitempty"`
	Found     bool        `json:"found,omitempty"`
	Exists    bool        `json:"exists,omitempty"`
	Added     bool        `json:"added,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// LoadResult is the JSON shape of the /load route.
type LoadResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Results loadgen.Report `json:"results"`
}

// Client talks to one or more front-end instances, spreading requests over
// the endpoints round-robin and retrying failed transports.
type Client struct {
	endpoints  []*url.URL
	httpClient *http.Client
	counter    uint32
	retryCount int
}

// NewClient creates a REST client for the given endpoints.
func NewClient(config ClientConfig) (*Client, error) {
	if len(config.Endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}
	if config.RetryCount <= 0 {
		config.RetryCount = 1
	}

	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, endpoint := range config.Endpoints {
		parsedURL, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
		}
		parsedURLs[i] = parsedURL
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second
	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     timeout,
		},
	}

	return &Client{
		endpoints:  parsedURLs,
		httpClient: httpClient,
		retryCount: config.RetryCount,
	}, nil
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// do sends a request to the next endpoint and returns the response body.
// Transport errors are retried; HTTP-level errors are returned to the
// caller together with the body so operation failures stay observable.
func (c *Client) do(method, path string, body interface{}) ([]byte, int, error) {
	// Select the next endpoint via round-robin
	idx := atomic.AddUint32(&c.counter, 1) % uint32(len(c.endpoints))
	requestURL := c.endpoints[idx].String() + path

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
	}

	var resp *http.Response
	var err error
	for i := 0; i < c.retryCount; i++ {
		var req *http.Request
		req, err = http.NewRequest(method, requestURL, bytes.NewReader(payload))
		if err != nil {
			return nil, 0, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return data, resp.StatusCode, nil
}

// doOp sends a request and decodes the standard operation response.
func (c *Client) doOp(method, path string, body interface{}) (*OpResponse, error) {
	data, _, err := c.do(method, path, body)
	if err != nil {
		return nil, err
	}

	var op OpResponse
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !op.Success {
		return &op, fmt.Errorf("operation failed: %s", op.Error)
	}
	return &op, nil
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// Health checks that the front-end and its backing store are reachable.
func (c *Client) Health() error {
	data, status, err := c.do(http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("unhealthy: %s", string(data))
	}
	return nil
}

// Set writes a string key with the given TTL in seconds.
func (c *Client) Set(key, value string, ttlSeconds int) error {
	_, err := c.doOp(http.MethodPost, "/set", map[string]interface{}{
		"key":   key,
		"value": value,
		"ttl":   ttlSeconds,
	})
	return err
}

// Get reads a string key. The boolean reports whether the key was found.
func (c *Client) Get(key string) (string, bool, error) {
	op, err := c.doOp(http.MethodGet, "/get/"+url.PathEscape(key), nil)
	if err != nil {
		return "", false, err
	}
	value, _ := op.Value.(string)
	return value, op.Found, nil
}

// Incr increments a counter key.
func (c *Client) Incr(key string) (int64, error) {
	op, err := c.doOp(http.MethodPost, "/incr", map[string]interface{}{"key": key})
	if err != nil {
		return 0, err
	}
	value, _ := op.Value.(float64) // JSON numbers decode as float64
	return int64(value), nil
}

// Exists checks whether a key exists.
func (c *Client) Exists(key string) (bool, error) {
	op, err := c.doOp(http.MethodGet, "/exists/"+url.PathEscape(key), nil)
	if err != nil {
		return false, err
	}
	return op.Exists, nil
}

// Delete removes a key.
func (c *Client) Delete(key string) error {
	_, err := c.doOp(http.MethodPost, "/del", map[string]interface{}{"key": key})
	return err
}

// Load triggers a mixed workload run on the front-end.
func (c *Client) Load(cfg loadgen.Config) (*loadgen.Report, error) {
	data, _, err := c.do(http.MethodPost, "/load", cfg)
	if err != nil {
		return nil, err
	}

	var result LoadResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode load result: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("load generation failed")
	}
	return &result.Results, nil
}

// ResetStats clears the front-end's request counters.
func (c *Client) ResetStats() error {
	_, status, err := c.do(http.MethodPost, "/stats/reset", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("stats reset failed with status %d", status)
	}
	return nil
}
