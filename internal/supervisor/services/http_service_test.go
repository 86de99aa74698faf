// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockHTTPServer is a test double for the HTTPServer interface.
type mockHTTPServer struct {
	listenAndServeErr    error
	listenAndServeBlock  bool
	shutdownErr          error
	listenAndServeCount  atomic.Int32
	shutdownCount        atomic.Int32
	listenAndServeCalled chan struct{}
	stopCh               chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		listenAndServeCalled: make(chan struct{}, 1),
		stopCh:               make(chan struct{}),
	}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listenAndServeCount.Add(1)
	select {
	case m.listenAndServeCalled <- struct{}{}:
	default:
	}

	if m.listenAndServeErr != nil {
		return m.listenAndServeErr
	}
	if m.listenAndServeBlock {
		<-m.stopCh
		return http.ErrServerClosed
	}
	return nil
}

func (m *mockHTTPServer) Shutdown(_ context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServerServiceInterface(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
}

func TestNewHTTPServerServiceDefaults(t *testing.T) {
	server := newMockHTTPServer()

	svc := NewHTTPServerService(server, 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("zero timeout = %v, want default 10s", svc.shutdownTimeout)
	}
	svc = NewHTTPServerService(server, -5*time.Second)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("negative timeout = %v, want default 10s", svc.shutdownTimeout)
	}
	if svc.String() != "http-server" {
		t.Errorf("name = %q", svc.String())
	}
}

func TestHTTPServerServiceServe(t *testing.T) {
	t.Run("shuts down gracefully on context cancellation", func(t *testing.T) {
		server := newMockHTTPServer()
		server.listenAndServeBlock = true
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		select {
		case <-server.listenAndServeCalled:
		case <-time.After(time.Second):
			t.Fatal("server did not start")
		}

		cancel()
		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if n := server.shutdownCount.Load(); n != 1 {
			t.Errorf("shutdown called %d times, want 1", n)
		}
	})

	t.Run("returns error on startup failure", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newMockHTTPServer()
		server.listenAndServeErr = bindErr
		svc := NewHTTPServerService(server, time.Second)

		if err := svc.Serve(context.Background()); !errors.Is(err, bindErr) {
			t.Errorf("Serve = %v, want wrapped bind error", err)
		}
	})

	t.Run("returns shutdown error if shutdown fails", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newMockHTTPServer()
		server.listenAndServeBlock = true
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		<-server.listenAndServeCalled
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("Serve = %v, want shutdown error", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestHTTPServerServiceWithSupervisor(t *testing.T) {
	server := newMockHTTPServer()
	server.listenAndServeBlock = true
	svc := NewHTTPServerService(server, time.Second)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-server.listenAndServeCalled:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}

	cancel()
	<-errCh

	if server.shutdownCount.Load() < 1 {
		t.Error("server Shutdown was not called")
	}
}
