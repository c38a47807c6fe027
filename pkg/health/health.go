// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run on a shared background ticker. A check must fail
// failureThreshold consecutive times before its probe reports unhealthy, so
// a single flaky poll does not flap the probe state.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// failureThreshold is the number of consecutive failures before a check is
// reported unhealthy. One success resets it.
const failureThreshold = 3

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// check holds one registered check and its probe state. All state is written
// from the single poll goroutine; HTTP handlers read it atomically.
type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	consecutiveFails int
	unhealthy        atomic.Bool
	lastErr          atomic.Pointer[error]
}

func (c *check) poll(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(checkCtx)
	c.lastErr.Store(&err)

	if err != nil {
		c.consecutiveFails++
		if c.consecutiveFails >= failureThreshold {
			c.unhealthy.Store(true)
		}
		return
	}
	c.consecutiveFails = 0
	c.unhealthy.Store(false)
}

func (c *check) failure() (string, bool) {
	if !c.unhealthy.Load() {
		return "", false
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error(), true
	}
	return "check is unhealthy", true
}

// Service manages liveness and readiness probes. The zero value is unusable;
// use New. A Service starts not-ready: call SetReady(true) once
// initialization finishes, and SetReady(false) when draining.
type Service struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates a Service with no checks registered.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check for the /livez probe. Register checks
// before calling Start.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check for the /readyz probe.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// Start polls all registered checks on the given interval until Stop is
// called or ctx is cancelled. Each check runs once immediately.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	checks := make([]*check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.Unlock()

	go func() {
		for _, c := range checks {
			c.poll(ctx)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, c := range checks {
					c.poll(ctx)
				}
			}
		}
	}()
}

// Stop cancels the background polling. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. The /readyz probe passes only
// when the gate is open and every readiness check is healthy.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the /livez probe: 200 when all liveness checks pass,
// 503 with per-check failures otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	checks := append([]*check(nil), s.liveness...)
	s.mu.Unlock()

	writeProbe(w, failures(checks))
}

// ReadyEndpoint serves the /readyz probe. It additionally honours the manual
// readiness gate set via SetReady.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	checks := append([]*check(nil), s.readiness...)
	s.mu.Unlock()

	fails := failures(checks)
	if !s.ready.Load() {
		fails["_readiness"] = "service is not ready"
	}
	writeProbe(w, fails)
}

func failures(checks []*check) map[string]string {
	fails := make(map[string]string)
	for _, c := range checks {
		if msg, bad := c.failure(); bad {
			fails[c.name] = msg
		}
	}
	return fails
}

func writeProbe(w http.ResponseWriter, fails map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := probeResponse{Status: "ok"}
	status := http.StatusOK
	if len(fails) > 0 {
		resp = probeResponse{Status: "unhealthy", Checks: fails}
		status = http.StatusServiceUnavailable
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
