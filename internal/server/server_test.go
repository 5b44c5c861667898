package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/codecatch/internal/shared"
	tu "github.com/desertthunder/codecatch/internal/testing"
)

func testConfig() *shared.Config {
	config := shared.DefaultConfig()
	config.Server.Host = "127.0.0.1"
	config.Server.Port = 0
	config.Server.ShutdownTimeout = 1
	return config
}

func startServer(t *testing.T, config *shared.Config) (string, *tu.SafeBuffer, context.CancelFunc, <-chan error) {
	t.Helper()

	console := &tu.SafeBuffer{}
	urls := make(chan string, 1)
	srv := New(Options{
		Config:  config,
		Console: console,
		Logger:  shared.NewLogger(&bytes.Buffer{}),
		Ready:   func(url string) { urls <- url },
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	select {
	case url := <-urls:
		return url, console, cancel, done
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not become ready")
		return "", nil, nil, nil
	}
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestServer(t *testing.T) {
	t.Run("serves the code page and stops on cancel", func(t *testing.T) {
		url, console, cancel, done := startServer(t, testConfig())

		if !strings.HasPrefix(url, "http://127.0.0.1:") || !strings.HasSuffix(url, "/auth") {
			t.Fatalf("unexpected listen URL %s", url)
		}
		tu.WaitForOutput(t, console, "Listening on "+url+"\n", time.Second)

		resp, body := get(t, url+"?code=abc123")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		if resp.Header.Get("Content-Type") != "text/html; charset=utf-8" {
			t.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
		}
		if resp.Header.Get(RequestIDHeader) == "" {
			t.Error("expected request id header")
		}
		if resp.Header.Get("Cache-Control") != "no-store" {
			t.Error("expected no-store")
		}
		if !strings.Contains(body, ">abc123</pre>") {
			t.Errorf("expected code in body, got %s", body)
		}

		tu.WaitForOutput(t, console, "Code: abc123\n", time.Second)

		resp, _ = get(t, strings.TrimSuffix(url, "/auth")+"/elsewhere")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200 for other paths, got %d", resp.StatusCode)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("expected clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}

		out := console.String()
		if !strings.HasSuffix(out, "Server stopped\n") {
			t.Errorf("expected shutdown line last, got %q", out)
		}
		wantBlock := "--- Incoming request ---\nPath: /auth?code=abc123\nCode: abc123\n-------------------------\n"
		if !strings.Contains(out, wantBlock) {
			t.Errorf("expected request block, got %q", out)
		}
		if !strings.Contains(out, "Path: /elsewhere\nCode: \n") {
			t.Errorf("expected second request block, got %q", out)
		}

		if _, err := http.Get(url); err == nil {
			t.Error("expected listener to be closed")
		}
	})

	t.Run("post is rejected", func(t *testing.T) {
		url, _, cancel, done := startServer(t, testConfig())
		defer func() { cancel(); <-done }()

		resp, err := http.Post(url+"?code=x", "text/plain", nil)
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", resp.StatusCode)
		}
	})

	t.Run("throttled server still answers", func(t *testing.T) {
		config := testConfig()
		config.Server.RateLimit = 100
		url, _, cancel, done := startServer(t, config)
		defer func() { cancel(); <-done }()

		for range 3 {
			if resp, _ := get(t, url+"?code=x"); resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
		}
	})

	t.Run("Run fails when the port is taken", func(t *testing.T) {
		taken, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		defer taken.Close()

		config := testConfig()
		config.Server.Port = taken.Addr().(*net.TCPAddr).Port

		console := &bytes.Buffer{}
		srv := New(Options{Config: config, Console: console, Logger: shared.NewLogger(&bytes.Buffer{})})

		err = srv.Run(context.Background())
		if !errors.Is(err, shared.ErrBind) {
			t.Fatalf("expected ErrBind, got %v", err)
		}
		if console.Len() != 0 {
			t.Errorf("expected nothing printed on bind failure, got %q", console.String())
		}
	})

	t.Run("Run binds the configured address", func(t *testing.T) {
		console := &tu.SafeBuffer{}
		srv := New(Options{Config: testConfig(), Console: console, Logger: shared.NewLogger(&bytes.Buffer{})})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Run(ctx) }()

		tu.WaitForOutput(t, console, "Listening on http://127.0.0.1:", 5*time.Second)
		cancel()

		if err := <-done; err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !strings.HasSuffix(console.String(), "Server stopped\n") {
			t.Errorf("expected shutdown line, got %q", console.String())
		}
	})

	t.Run("New applies defaults", func(t *testing.T) {
		srv := New(Options{})
		if srv.Handler() == nil || srv.console == nil || srv.logger == nil {
			t.Error("expected defaults to be set")
		}
		if srv.config.Port != 5000 || srv.config.Host != "localhost" {
			t.Errorf("expected default address, got %s", srv.config.Address())
		}
	})
}
