package citeproc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cassius-cv/cassius/internal/config"
)

// probeInterval is the poll interval of the readiness check.
const probeInterval = 250 * time.Millisecond

// runner executes a shell command line in a working directory.
type runner interface {
	Run(command, workdir string) error
}

type shellRunner struct{}

func (shellRunner) Run(command, workdir string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = workdir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Server manages the configured citeproc-js-server instances.
type Server struct {
	cfg    config.CiteprocConfig
	runner runner
	probe  *http.Client
	log    *zap.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRunner sets a custom command runner (for testing).
func WithRunner(r runner) ServerOption {
	return func(s *Server) {
		s.runner = r
	}
}

// WithProbeClient sets the HTTP client used by the readiness probe.
func WithProbeClient(hc *http.Client) ServerOption {
	return func(s *Server) {
		s.probe = hc
	}
}

// NewServer creates a lifecycle manager for the configured instances.
func NewServer(cfg config.CiteprocConfig, log *zap.Logger, opts ...ServerOption) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		runner: shellRunner{},
		probe:  &http.Client{Timeout: probeInterval},
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches one instance per configured port and waits until
// every instance answers, up to the configured startup delay.
func (s *Server) Start(ctx context.Context) error {
	for _, port := range s.cfg.Ports {
		command := substitutePort(s.cfg.StartCommand, port)
		s.log.Debug("starting citeproc instance", zap.Int("port", port))
		if err := s.runner.Run(command, s.cfg.Workdir); err != nil {
			return fmt.Errorf("starting instance on port %d: %w", port, err)
		}
	}

	deadline := time.Duration(s.cfg.StartupDelaySeconds) * time.Second
	if err := s.waitReady(ctx, deadline); err != nil {
		return err
	}

	s.log.Info("citeproc instances ready", zap.Ints("ports", s.cfg.Ports))
	return nil
}

// Stop shuts every instance down. Failures are logged, not returned;
// shutdown runs on the way out and a dead instance is the goal anyway.
func (s *Server) Stop() {
	for _, port := range s.cfg.Ports {
		command := substitutePort(s.cfg.StopCommand, port)
		if err := s.runner.Run(command, s.cfg.Workdir); err != nil {
			s.log.Warn("stopping citeproc instance",
				zap.Int("port", port),
				zap.Error(err))
		}
	}
	s.log.Info("citeproc instances stopped")
}

// waitReady polls every instance until it responds or the deadline
// passes. The configured delay is an upper bound, not a fixed wait.
func (s *Server) waitReady(ctx context.Context, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	for _, port := range s.cfg.Ports {
		url := substitutePort(s.cfg.Server, port)
		for {
			if ready(ctx, s.probe, url) {
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("instance on port %d not ready after %s", port, deadline)
			case <-time.After(probeInterval):
			}
		}
	}
	return nil
}

// ready reports whether the instance answered at all; any HTTP status
// counts, only transport failure does not.
func ready(ctx context.Context, hc *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := hc.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

func substitutePort(template string, port int) string {
	return strings.ReplaceAll(template, "[[port]]", strconv.Itoa(port))
}
