package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/ymlfeed/internal/config"
	"github.com/shaiso/ymlfeed/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServiceMux_Healthz(t *testing.T) {
	tests := []struct {
		name   string
		ready  func() error
		status int
	}{
		{"no check", nil, http.StatusOK},
		{"ready", func() error { return nil }, http.StatusOK},
		{"db down", func() error { return errors.New("db down") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ServiceMux(tt.ready).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestServiceMux_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceMux(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics output has no runtime collectors")
	}
}

func TestNewSink_Local(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()

	sink, closer, err := NewSink(context.Background(), &cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	defer closer.Close()

	if _, ok := sink.(*storage.LocalSink); !ok {
		t.Errorf("sink = %T, want *storage.LocalSink", sink)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	// Берём свободный порт.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, port, ServiceMux(nil), discardLogger())
	}()

	// Ждём, пока сервер начнёт отвечать.
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://127.0.0.1:" + port + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not start: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
