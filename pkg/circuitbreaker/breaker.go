package circuitbreaker

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

type Config struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	Timeout          time.Duration
	Logger           *zap.Logger
}

// CircuitBreaker trips open after consecutive failures and probes again
// after Timeout. A single probe is allowed in the half-open state.
type CircuitBreaker struct {
	name             string
	failureThreshold uint32
	successThreshold uint32
	timeout          time.Duration
	logger           *zap.Logger

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
	probing   bool
}

func New(name string, cfg Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:             name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		timeout:          cfg.Timeout,
		logger:           cfg.Logger,
	}
	if cb.failureThreshold == 0 {
		cb.failureThreshold = 5
	}
	if cb.successThreshold == 0 {
		cb.successThreshold = 2
	}
	if cb.timeout == 0 {
		cb.timeout = 30 * time.Second
	}
	if cb.logger == nil {
		cb.logger = zap.NewNop()
	}
	return cb
}

func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.timeout {
			return ErrCircuitOpen
		}
		cb.setState(StateHalfOpen)
		cb.probing = true
		return nil
	case StateHalfOpen:
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
		return nil
	default:
		return nil
	}
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probing = false

	if success {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.successes++
			if cb.successes >= cb.successThreshold {
				cb.setState(StateClosed)
			}
		}
		return
	}

	cb.successes = 0
	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.openedAt = time.Now()
		cb.setState(StateOpen)
	}
}

func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	if state == StateClosed {
		cb.failures = 0
		cb.successes = 0
	}

	cb.logger.Info("Circuit breaker state changed",
		zap.String("name", cb.name),
		zap.String("from", prev.String()),
		zap.String("to", state.String()),
	)
}
