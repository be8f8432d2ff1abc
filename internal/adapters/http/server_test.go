package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bft-labs/aisdecoder/pkg/log"
)

func TestServer_Health(t *testing.T) {
	healthy := true
	s := NewServer("127.0.0.1:0", http.NotFoundHandler(), func() bool { return healthy }, log.NewNoopLogger())

	tests := []struct {
		healthy bool
		want    int
	}{
		{true, http.StatusOK},
		{false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		healthy = tt.healthy
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", HealthPath, nil))
		if rec.Code != tt.want {
			t.Errorf("healthy=%v: status = %d, want %d", tt.healthy, rec.Code, tt.want)
		}
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("aisdecoder_up 1\n"))
	})
	s := NewServer("127.0.0.1:0", metrics, nil, log.NewNoopLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + MetricsPath)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "aisdecoder_up 1\n" {
		t.Errorf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
