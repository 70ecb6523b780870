package roster_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/open-insights/course-analytics/internal/roster"
)

func TestParseRoster(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple list",
			input: "edX/DemoX/Demo_Course\nedX/Other/Course\n",
			want:  []string{"edX/DemoX/Demo_Course", "edX/Other/Course"},
		},
		{
			name:  "comments and blank lines skipped",
			input: "# production courses\n\nedX/DemoX/Demo_Course\n\n# archived\nedX/Old/Course\n",
			want:  []string{"edX/DemoX/Demo_Course", "edX/Old/Course"},
		},
		{
			name:  "whitespace trimmed",
			input: "  edX/DemoX/Demo_Course  \n\tedX/Other/Course\n",
			want:  []string{"edX/DemoX/Demo_Course", "edX/Other/Course"},
		},
		{
			name:  "duplicates dropped, first occurrence wins",
			input: "edX/DemoX/Demo_Course\nedX/Other/Course\nedX/DemoX/Demo_Course\n",
			want:  []string{"edX/DemoX/Demo_Course", "edX/Other/Course"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "comments only",
			input: "# nothing here\n# really\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := roster.ParseRoster(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseRoster() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRoster() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetcherFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("# roster\nedX/DemoX/Demo_Course\nedX/Other/Course\n"))
	}))
	defer server.Close()

	f := roster.NewFetcher(server.URL)
	got, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	want := []string{"edX/DemoX/Demo_Course", "edX/Other/Course"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fetch() = %v, want %v", got, want)
	}
}

func TestFetcherFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := roster.NewFetcher(server.URL)
	if _, err := f.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() expected error for server failure, got nil")
	}
}
