// Package health implements liveness and readiness probes in the style of
// Kubernetes: every check runs on its own ticker, and consecutive
// failure/success streaks must cross a threshold before the reported state
// flips, so a single slow poll does not mark the service unhealthy.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureStreak = 3
	defaultSuccessStreak = 1
)

// probe is one registered check plus its runtime state. The streak counters
// belong to the single poll goroutine; state and err cross goroutines and sit
// behind the mutex.
type probe struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	fails, oks int

	mu      sync.Mutex
	healthy bool
	err     error
}

func newProbe(name string, timeout time.Duration, fn CheckFunc) *probe {
	// Healthy until a failure streak says otherwise.
	return &probe{name: name, timeout: timeout, fn: fn, healthy: true}
}

func (p *probe) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.fn(ctx)

	if err != nil {
		p.oks = 0
		p.fails++
	} else {
		p.fails = 0
		p.oks++
	}

	p.mu.Lock()
	p.err = err
	switch {
	case p.fails >= defaultFailureStreak:
		p.healthy = false
	case p.oks >= defaultSuccessStreak:
		p.healthy = true
	}
	p.mu.Unlock()
}

func (p *probe) state() (healthy bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy, p.err
}

func (p *probe) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// Service owns the registered probes and the manual readiness flag.
type Service struct {
	ready atomic.Bool

	mu        sync.Mutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns a Service in the not-ready state. Call SetReady(true) once
// startup finishes.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a check that decides whether the process itself
// is functioning (goroutine leaks, deadlocks). Register before Start.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	s.liveness = append(s.liveness, newProbe(name, timeout, fn))
	s.mu.Unlock()
}

// AddReadinessCheck registers a check that decides whether traffic should be
// routed here (database reachable, caches warm). Register before Start.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	s.readiness = append(s.readiness, newProbe(name, timeout, fn))
	s.mu.Unlock()
}

// Start launches one polling goroutine per registered probe.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	probes := append(append([]*probe(nil), s.liveness...), s.readiness...)
	s.mu.Unlock()

	for _, p := range probes {
		go p.loop(ctx, interval)
	}
}

// Stop cancels the polling goroutines. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness flag. Flip to false during graceful
// shutdown so load balancers drain this instance.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports readiness: the manual flag must be set and every readiness
// probe must be healthy.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	s.mu.Lock()
	probes := s.readiness
	s.mu.Unlock()

	for _, p := range probes {
		if healthy, _ := p.state(); !healthy {
			return false
		}
	}
	return true
}

type probeReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 while all liveness probes pass, 503 with
// the failing checks otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	probes := append([]*probe(nil), s.liveness...)
	s.mu.Unlock()

	report(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness probes pass, 503 with details otherwise.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	probes := append([]*probe(nil), s.readiness...)
	s.mu.Unlock()

	failed := failures(probes)
	if !s.ready.Load() {
		failed["_readiness"] = "service is not ready"
	}
	report(w, failed)
}

func failures(probes []*probe) map[string]string {
	failed := make(map[string]string)
	for _, p := range probes {
		healthy, err := p.state()
		if healthy {
			continue
		}
		if err != nil {
			failed[p.name] = err.Error()
		} else {
			failed[p.name] = "check is unhealthy"
		}
	}
	return failed
}

func report(w http.ResponseWriter, failed map[string]string) {
	resp := probeReport{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		resp = probeReport{Status: "unhealthy", Checks: failed}
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
