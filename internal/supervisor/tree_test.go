// NextPage - Book Catalog Browser and Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextpage

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// fakeService counts starts and blocks until stopped. It fails its first
// failFirst runs.
type fakeService struct {
	name      string
	starts    atomic.Int32
	failFirst int32
	running   chan struct{}
}

func newFakeService(name string) *fakeService {
	return &fakeService{name: name, running: make(chan struct{}, 8)}
}

func (s *fakeService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failFirst {
		return errors.New("boom")
	}
	select {
	case s.running <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func waitRunning(t *testing.T, s *fakeService) {
	t.Helper()
	select {
	case <-s.running:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not start", s.name)
	}
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{})
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}

	custom := TreeConfig{FailureThreshold: 2, FailureDecay: 1, FailureBackoff: time.Second, ShutdownTimeout: time.Second}
	if got := NewSupervisorTree(quietLogger(), custom).config; got != custom {
		t.Errorf("config = %+v, want %+v", got, custom)
	}
}

func TestSupervisorTree_Lifecycle(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})

	data := newFakeService("data")
	api := newFakeService("api")
	tree.AddDataService(data)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	waitRunning(t, data)
	waitRunning(t, api)
	cancel()

	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("UnstoppedServiceReport() error = %v", err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services = %v", report)
	}
}

func TestSupervisorTree_RestartsFailedService(t *testing.T) {
	tree := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newFakeService("flaky")
	flaky.failFirst = 2
	steady := newFakeService("steady")
	tree.AddDataService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	waitRunning(t, flaky)
	waitRunning(t, steady)

	if got := flaky.starts.Load(); got != 3 {
		t.Errorf("flaky starts = %d, want 3", got)
	}
	if got := steady.starts.Load(); got != 1 {
		t.Errorf("steady starts = %d, want 1 (failures must not cross layers)", got)
	}

	cancel()
	<-errCh
}
