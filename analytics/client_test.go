package analytics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/open-insights/course-analytics/analytics"
)

func TestGet(t *testing.T) {
	cases := []struct {
		name        string
		serverResp  string
		statusCode  int
		format      analytics.DataFormat
		want        any
		wantErrType error
	}{
		{
			name:       "json object",
			serverResp: `{"course_id": "edX/DemoX/Demo_Course", "count": 42}`,
			statusCode: http.StatusOK,
			format:     analytics.JSON,
			want:       map[string]any{"course_id": "edX/DemoX/Demo_Course", "count": float64(42)},
		},
		{
			name:       "json list",
			serverResp: `[{"count": 1}, {"count": 2}]`,
			statusCode: http.StatusOK,
			format:     analytics.JSON,
			want:       []any{map[string]any{"count": float64(1)}, map[string]any{"count": float64(2)}},
		},
		{
			name:       "csv raw text",
			serverResp: "a,b\n1,2\n",
			statusCode: http.StatusOK,
			format:     analytics.CSV,
			want:       "a,b\n1,2\n",
		},
		{
			name:        "not found returns ErrNotFound",
			statusCode:  http.StatusNotFound,
			format:      analytics.JSON,
			wantErrType: analytics.ErrNotFound,
		},
		{
			name:        "bad request returns ErrInvalidRequest",
			statusCode:  http.StatusBadRequest,
			format:      analytics.JSON,
			wantErrType: analytics.ErrInvalidRequest,
		},
		{
			name:        "server error returns ErrTransport",
			statusCode:  http.StatusBadGateway,
			format:      analytics.JSON,
			wantErrType: analytics.ErrTransport,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET, got %s", r.Method)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.serverResp))
			}))
			defer server.Close()

			client := analytics.NewClient(server.URL)
			got, err := client.Get(context.Background(), "courses/test/problems/", tt.format)

			if tt.wantErrType != nil {
				if !errors.Is(err, tt.wantErrType) {
					t.Fatalf("error = %v, want %v", err, tt.wantErrType)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Get() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not-json"))
	}))
	defer server.Close()

	client := analytics.NewClient(server.URL)
	if _, err := client.Get(context.Background(), "status", analytics.JSON); err == nil {
		t.Error("expected decode error for non-JSON body in JSON format")
	}
}

func TestGetNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := analytics.NewClient(server.URL)
	_, err := client.Get(context.Background(), "status", analytics.JSON)
	if !errors.Is(err, analytics.ErrTransport) {
		t.Errorf("error = %v, want ErrTransport", err)
	}
}

func TestAuthTokenHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := analytics.NewClient(server.URL, analytics.WithAuthToken("edx-token"))
	if _, err := client.Get(context.Background(), "status", analytics.JSON); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotAuth != "Token edx-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Token edx-token")
	}
}

func TestBaseURLTrailingSlash(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	client := analytics.NewClient(server.URL + "/")
	if _, err := client.Get(context.Background(), "status", analytics.JSON); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if gotPath != "/status" {
		t.Errorf("path = %q, want %q", gotPath, "/status")
	}
}

func TestClientWithRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer server.Close()

	// 2 requests per second: 3 requests should take at least 1 second.
	client := analytics.NewClient(server.URL, analytics.WithRateLimit(2.0))
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Get(ctx, "status", analytics.JSON); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("rate limit not working: elapsed %v, expected >= 1s", elapsed)
	}
}

func TestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			w.Write([]byte("OK"))
		case "/authenticated":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	status := analytics.NewClient(server.URL).Status()
	ctx := context.Background()

	if !status.Alive(ctx) {
		t.Error("Alive() = false, want true")
	}
	if status.Authenticated(ctx) {
		t.Error("Authenticated() = true, want false")
	}
}

func TestHasResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/courses/test/problems/" {
			w.Write([]byte("[]"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := analytics.NewClient(server.URL)
	ctx := context.Background()

	if !client.HasResource(ctx, "courses/test/problems/") {
		t.Error("HasResource() = false for existing resource, want true")
	}
	if client.HasResource(ctx, "courses/test/missing/") {
		t.Error("HasResource() = true for missing resource, want false")
	}
}
