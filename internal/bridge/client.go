package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// DefaultTimeout bounds a single poll request
	DefaultTimeout = time.Second
)

// WithHTTPClient replaces the transport used for poll requests
func WithHTTPClient(hc *http.Client) func(c *Client) {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithConnectivity replaces the pre-poll network check
func WithConnectivity(conn Connectivity) func(c *Client) {
	return func(c *Client) {
		c.checker = conn
	}
}

// Client reads instrument variables from a sim-variable bridge. One Client
// issues one POST per Poll; the request body is fixed at construction.
type Client struct {
	endpoint string
	reqBody  []byte

	httpClient *http.Client
	checker    Connectivity
}

// NewClient validates the endpoint and variable set and prepares the poll
// request body.
func NewClient(endpoint string, vars Vars, options ...func(c *Client)) (*Client, error) {
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("invalid bridge endpoint: %w", err)
	}
	if err := vars.validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(newEnvelope(vars))
	if err != nil {
		return nil, fmt.Errorf("encoding poll request: %w", err)
	}

	c := Client{
		endpoint:   endpoint,
		reqBody:    body,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		checker:    NewInterfaceChecker(),
	}

	for _, option := range options {
		option(&c)
	}

	return &c, nil
}

// Poll reads the variable set once and classifies anything that goes wrong.
// On an EmptyTitle failure the returned sample is still valid; every other
// failure returns a nil sample.
func (c *Client) Poll(ctx context.Context) (*Sample, error) {
	if !c.checker.Online() {
		return nil, &Failure{Kind: NoNetwork}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(c.reqBody))
	if err != nil {
		return nil, &Failure{Kind: Unreachable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Failure{Kind: Unreachable, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode > 299 {
		io.Copy(io.Discard, res.Body) // drain so the connection can be reused
		return nil, &Failure{Kind: Unreachable, Err: fmt.Errorf("bridge returned %s", res.Status)}
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, &Failure{Kind: BadPayload, Err: err}
	}

	if len(env.GetStringVars) == 0 {
		return nil, &Failure{Kind: NoAircraft}
	}
	if len(env.GetVars) == 0 {
		return nil, &Failure{Kind: NoTelemetry}
	}

	s := Sample{
		Timestamp: time.Now(),
		Altitude:  env.numAt(0),
		Kohlsman:  env.numAt(1),
		Bug:       env.numAt(2),
		Title:     env.GetStringVars[0].Value,
	}

	if s.Title == "" {
		return &s, &Failure{Kind: EmptyTitle}
	}

	return &s, nil
}
