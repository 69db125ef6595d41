package citeproc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cassius-cv/cassius/internal/config"
)

type fakeRunner struct {
	commands []string
	workdirs []string
	err      error
}

func (r *fakeRunner) Run(command, workdir string) error {
	r.commands = append(r.commands, command)
	r.workdirs = append(r.workdirs, workdir)
	return r.err
}

func TestStartSubstitutesPortsAndProbes(t *testing.T) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
	}))
	defer srv.Close()

	runner := &fakeRunner{}
	cfg := config.CiteprocConfig{
		Server:              srv.URL,
		Ports:               []int{8085, 8086},
		StartCommand:        "node lib/citeServer.js --port [[port]]",
		Workdir:             "/opt/citeproc-js-server",
		StartupDelaySeconds: 2,
	}
	s := NewServer(cfg, nil, WithRunner(runner))

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := []string{
		"node lib/citeServer.js --port 8085",
		"node lib/citeServer.js --port 8086",
	}
	if len(runner.commands) != 2 || runner.commands[0] != want[0] || runner.commands[1] != want[1] {
		t.Errorf("commands = %v, want %v", runner.commands, want)
	}
	if runner.workdirs[0] != "/opt/citeproc-js-server" {
		t.Errorf("workdir = %q", runner.workdirs[0])
	}
	if probes.Load() == 0 {
		t.Error("readiness probe never ran")
	}
}

func TestStartReturnsBeforeDelayWhenReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	cfg := config.CiteprocConfig{
		Server:              srv.URL,
		Ports:               []int{8085},
		StartCommand:        "true",
		StartupDelaySeconds: 10,
	}
	s := NewServer(cfg, nil, WithRunner(&fakeRunner{}))

	start := time.Now()
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Start blocked for %s despite ready instance", elapsed)
	}
}

func TestStartTimesOutOnSilentInstance(t *testing.T) {
	cfg := config.CiteprocConfig{
		// Reserved TEST-NET-1 address, nothing answers.
		Server:              "http://192.0.2.1:1",
		Ports:               []int{8085},
		StartCommand:        "true",
		StartupDelaySeconds: 1,
	}
	s := NewServer(cfg, nil, WithRunner(&fakeRunner{}))

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start succeeded with no instance answering")
	}
}

func TestStopRunsStopCommandPerPort(t *testing.T) {
	runner := &fakeRunner{}
	cfg := config.CiteprocConfig{
		Ports:       []int{8085, 8086},
		StopCommand: "screen -S serve_npm[[port]] -X quit",
	}
	s := NewServer(cfg, nil, WithRunner(runner))
	s.Stop()

	if len(runner.commands) != 2 {
		t.Fatalf("ran %d commands, want 2", len(runner.commands))
	}
	if runner.commands[1] != "screen -S serve_npm8086 -X quit" {
		t.Errorf("command = %q", runner.commands[1])
	}
}
