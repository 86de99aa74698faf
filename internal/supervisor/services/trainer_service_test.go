// Shoplens - Predictive E-commerce Analytics and Product Recommendations
// Copyright 2026 Shoplens Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoplens/shoplens

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// mockFitter counts training runs.
type mockFitter struct {
	fits   atomic.Int32
	err    error
	fitted chan struct{}
}

func newMockFitter() *mockFitter {
	return &mockFitter{fitted: make(chan struct{}, 16)}
}

func (m *mockFitter) Fit(_ context.Context) error {
	m.fits.Add(1)
	select {
	case m.fitted <- struct{}{}:
	default:
	}
	return m.err
}

func TestTrainerServiceInterface(t *testing.T) {
	var _ suture.Service = (*TrainerService)(nil)
}

func TestTrainerServiceFitOnStartup(t *testing.T) {
	fitter := newMockFitter()
	svc := NewTrainerService(fitter, TrainerConfig{FitOnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	select {
	case <-fitter.fitted:
	case <-time.After(time.Second):
		t.Fatal("startup fit did not run")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}

	if n := fitter.fits.Load(); n != 1 {
		t.Errorf("fit ran %d times, want 1", n)
	}
}

func TestTrainerServicePeriodicRefit(t *testing.T) {
	fitter := newMockFitter()
	svc := NewTrainerService(fitter, TrainerConfig{RefitInterval: 10 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = svc.Serve(ctx)
	}()

	// Wait for at least two scheduled runs.
	for i := 0; i < 2; i++ {
		select {
		case <-fitter.fitted:
		case <-time.After(time.Second):
			t.Fatalf("scheduled fit %d did not run", i+1)
		}
	}
}

func TestTrainerServiceStartupFailureIsNonFatal(t *testing.T) {
	fitter := newMockFitter()
	fitter.err = errors.New("not enough data")
	svc := NewTrainerService(fitter, TrainerConfig{FitOnStartup: true}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Serve(ctx)
	}()

	<-fitter.fitted
	cancel()

	select {
	case err := <-errCh:
		// A failed fit must not crash the service out of the supervisor.
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
}
