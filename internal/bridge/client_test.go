package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, DefaultVars(), WithConnectivity(Always(true)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	return c, srv
}

func serveVars(t *testing.T, nums []float64, strs ...string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		var req envelope
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body did not decode: %v", err)
		}

		var res envelope
		for i, v := range nums {
			name := ""
			if i < len(req.GetVars) {
				name = req.GetVars[i].Var
			}
			res.GetVars = append(res.GetVars, numVar{Var: name, Value: v})
		}
		for i, v := range strs {
			name := ""
			if i < len(req.GetStringVars) {
				name = req.GetStringVars[i].Var
			}
			res.GetStringVars = append(res.GetStringVars, strVar{Var: name, Value: v})
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}
}

func TestClientPoll(t *testing.T) {
	c, _ := newTestClient(t, serveVars(t, []float64{5250.4, 29.921, 120}, "Cessna 152"))

	s, err := c.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if s.Altitude != 5250.4 {
		t.Errorf("Altitude = %v, want 5250.4", s.Altitude)
	}
	if s.Kohlsman != 29.921 {
		t.Errorf("Kohlsman = %v, want 29.921", s.Kohlsman)
	}
	if s.Bug != 120 {
		t.Errorf("Bug = %v, want 120", s.Bug)
	}
	if s.Title != "Cessna 152" {
		t.Errorf("Title = %q, want %q", s.Title, "Cessna 152")
	}
	if s.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}

func TestClientPollRequestShape(t *testing.T) {
	vars := DefaultVars()

	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		var req envelope
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}

		want := []string{vars.Altitude, vars.Pressure, vars.Bug}
		if len(req.GetVars) != len(want) {
			t.Fatalf("getvars count = %d, want %d", len(req.GetVars), len(want))
		}
		for i, name := range want {
			if req.GetVars[i].Var != name {
				t.Errorf("getvars[%d] = %q, want %q", i, req.GetVars[i].Var, name)
			}
			if req.GetVars[i].Value != 0 {
				t.Errorf("getvars[%d] placeholder = %v, want 0", i, req.GetVars[i].Value)
			}
		}

		if len(req.GetStringVars) != 1 || req.GetStringVars[0].Var != vars.Title {
			t.Errorf("getstringvars = %+v, want single %q entry", req.GetStringVars, vars.Title)
		}

		json.NewEncoder(w).Encode(envelope{
			GetVars:       []numVar{{Value: 1000}, {Value: 29.92}, {Value: 0}},
			GetStringVars: []strVar{{Value: "Test"}},
		})
	})

	if _, err := c.Poll(context.Background()); err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
}

func TestClientPollFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    FailureKind
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "sim not running", http.StatusServiceUnavailable)
			},
			want: Unreachable,
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>not json</html>")
			},
			want: BadPayload,
		},
		{
			name:    "no aircraft loaded",
			handler: serveVars(t, []float64{1000, 29.92, 0}),
			want:    NoAircraft,
		},
		{
			name:    "no telemetry values",
			handler: serveVars(t, nil, "Cessna 152"),
			want:    NoTelemetry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)

			s, err := c.Poll(context.Background())
			if s != nil {
				t.Errorf("Poll() sample = %+v, want nil", s)
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("Poll() failure kind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientPollEmptyTitle(t *testing.T) {
	c, _ := newTestClient(t, serveVars(t, []float64{820, 30.11, 45}, ""))

	s, err := c.Poll(context.Background())
	if KindOf(err) != EmptyTitle {
		t.Fatalf("Poll() failure kind = %q, want %q", KindOf(err), EmptyTitle)
	}
	if s == nil {
		t.Fatal("Poll() sample is nil, want usable reading alongside the failure")
	}
	if s.Altitude != 820 || s.Bug != 45 {
		t.Errorf("sample = %+v, want altitude 820 and bug 45", s)
	}
}

func TestClientPollShortNumericList(t *testing.T) {
	c, _ := newTestClient(t, serveVars(t, []float64{1500}, "Piper Cub"))

	s, err := c.Poll(context.Background())
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}

	if s.Altitude != 1500 {
		t.Errorf("Altitude = %v, want 1500", s.Altitude)
	}
	if s.Kohlsman != 0 || s.Bug != 0 {
		t.Errorf("missing slots = (%v, %v), want wire defaults (0, 0)", s.Kohlsman, s.Bug)
	}
}

func TestClientPollNoNetwork(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, DefaultVars(), WithConnectivity(Always(false)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	s, err := c.Poll(context.Background())
	if s != nil || KindOf(err) != NoNetwork {
		t.Errorf("Poll() = (%v, %v), want nil sample and %q failure", s, err, NoNetwork)
	}
	if requests != 0 {
		t.Errorf("bridge saw %d requests, want none before the network check passes", requests)
	}
}

func TestClientPollBridgeDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c, err := NewClient(endpoint, DefaultVars(), WithConnectivity(Always(true)))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := c.Poll(context.Background()); KindOf(err) != Unreachable {
		t.Errorf("Poll() failure kind = %q, want %q", KindOf(err), Unreachable)
	}
}

func TestClientPollTimeout(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	})
	WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond})(c)

	start := time.Now()
	_, err := c.Poll(context.Background())
	if KindOf(err) != Unreachable {
		t.Errorf("Poll() failure kind = %q, want %q", KindOf(err), Unreachable)
	}
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Errorf("Poll() blocked %v, want the transport timeout to bound it", elapsed)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		vars     Vars
	}{
		{name: "bad endpoint", endpoint: "not a url", vars: DefaultVars()},
		{name: "missing expressions", endpoint: "http://localhost:9080/webapi", vars: Vars{Altitude: "(A:INDICATED ALTITUDE, Feet)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.endpoint, tt.vars); err == nil {
				t.Error("NewClient() error = nil, want validation failure")
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("poll cycle: %w", &Failure{Kind: NoAircraft})

	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error", err: errors.New("boom"), want: ""},
		{name: "direct failure", err: &Failure{Kind: Unreachable}, want: Unreachable},
		{name: "wrapped failure", err: wrapped, want: NoAircraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
