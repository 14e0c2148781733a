package releases_http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tfgate/tfgate/internal/domain"
)

func TestLatest_TrimsTagPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/opentofu/opentofu/releases/latest" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"tag_name":"v1.8.3"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	v, err := c.Latest(context.Background(), domain.ToolTofu)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "1.8.3" {
		t.Errorf("got %q, want 1.8.3", v)
	}
}

func TestLatest_RetriesOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"tag_name":"v1.13.0"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	v, err := c.Latest(context.Background(), domain.ToolTerraform)
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}
	if v != "1.13.0" {
		t.Errorf("got %q", v)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestLatest_ClientErrorIsPermanent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, 2*time.Second)
	if _, err := c.Latest(context.Background(), domain.ToolTerraform); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("404 must not be retried, got %d calls", calls)
	}
}
