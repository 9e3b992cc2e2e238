package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 2*time.Second)
}

func TestClient_Stations(t *testing.T) {
	t.Run("decodes a plain JSON body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/stations" {
				t.Errorf("path = %q, want /stations", r.URL.Path)
			}
			w.Write([]byte(`{"stations":[{"id":"A"}]}`))
		})

		got, err := c.Stations(context.Background())
		if err != nil {
			t.Fatalf("Stations() error = %v", err)
		}
		m, ok := got.(map[string]any)
		if !ok {
			t.Fatalf("Stations() = %T, want map", got)
		}
		if _, ok := m["stations"].([]any); !ok {
			t.Errorf("stations key = %T, want array", m["stations"])
		}
	})

	t.Run("unwraps a string-serialized JSON body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"[{\"id\":\"A\"}]"`))
		})

		got, err := c.Stations(context.Background())
		if err != nil {
			t.Fatalf("Stations() error = %v", err)
		}
		if _, ok := got.([]any); !ok {
			t.Errorf("Stations() = %T, want array after double decode", got)
		}
	})

	t.Run("keeps an undecodable body as a literal string", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json at all`))
		})

		got, err := c.Stations(context.Background())
		if err != nil {
			t.Fatalf("Stations() error = %v", err)
		}
		if got != "not json at all" {
			t.Errorf("Stations() = %v, want literal body string", got)
		}
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		})

		if _, err := c.Stations(context.Background()); err == nil {
			t.Error("Stations() error = nil, want upstream status error")
		}
	})
}

func TestClient_History(t *testing.T) {
	var gotCode string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/historical_weather" {
			t.Errorf("path = %q, want /historical_weather", r.URL.Path)
		}
		gotCode = r.URL.Query().Get("station")
		w.Write([]byte(`{"points":[{"timestamp":"2024-01-01 00:00","temp":5}]}`))
	})

	got, err := c.History(context.Background(), "KBOS")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if gotCode != "KBOS" {
		t.Errorf("station query param = %q, want KBOS", gotCode)
	}
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("History() = %T, want map", got)
	}
	if _, ok := m["points"].([]any); !ok {
		t.Errorf("points key = %T, want array", m["points"])
	}
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string // loose shape check
	}{
		{name: "array", body: `[1,2]`, want: "array"},
		{name: "object", body: `{"a":1}`, want: "map"},
		{name: "string wrapping object", body: `"{\"a\":1}"`, want: "map"},
		{name: "string wrapping garbage stays string", body: `"hello"`, want: "string"},
		{name: "invalid stays string", body: `{{`, want: "string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeBody([]byte(tt.body))
			switch tt.want {
			case "array":
				if _, ok := got.([]any); !ok {
					t.Errorf("decodeBody(%q) = %T, want []any", tt.body, got)
				}
			case "map":
				if _, ok := got.(map[string]any); !ok {
					t.Errorf("decodeBody(%q) = %T, want map[string]any", tt.body, got)
				}
			case "string":
				if _, ok := got.(string); !ok {
					t.Errorf("decodeBody(%q) = %T, want string", tt.body, got)
				}
			}
		})
	}
}
