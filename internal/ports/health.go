package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when registering a health checker whose
// name is already taken.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker is implemented by adapters that can report their health:
// the interest store pings its database, the content provider probes its
// upstream. Checkers register with the HealthRegistry at startup.
type HealthChecker interface {
	// Name returns a unique identifier used in health responses.
	Name() string

	// Check returns nil when healthy. Implementations must respect
	// context cancellation and deadlines.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates health checks from registered components.
type HealthRegistry interface {
	// Register adds a checker. Fails on duplicate names.
	Register(checker HealthChecker) error

	// CheckAll runs every registered check concurrently and aggregates
	// the results.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the overall or per-check health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the aggregated outcome of CheckAll.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry is a thread-safe HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{checkers: make([]HealthChecker, 0)}
}

// Register adds a health checker, rejecting duplicate names.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := checker.Name()
	for _, c := range r.checkers {
		if c.Name() == name {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs all registered checks concurrently.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := make([]HealthChecker, len(r.checkers))
	copy(checkers, r.checkers)
	r.mu.RUnlock()

	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult),
		Timestamp: time.Now(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for _, checker := range checkers {
		wg.Add(1)

		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)

			check := &CheckResult{
				Status:   HealthStatusHealthy,
				Duration: time.Since(start),
			}
			if err != nil {
				check.Status = HealthStatusUnhealthy
				check.Message = err.Error()
			}

			mu.Lock()
			result.Checks[c.Name()] = check
			if check.Status == HealthStatusUnhealthy {
				result.Status = HealthStatusUnhealthy
			}
			mu.Unlock()
		}(checker)
	}

	wg.Wait()

	return result
}
