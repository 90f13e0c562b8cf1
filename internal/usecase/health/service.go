package health

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
	Errors map[string]string      `json:"errors,omitempty"`
}

type namedCheck struct {
	name    string
	checker Checker
}

// Service runs the registered checks.
type Service struct {
	checks []namedCheck
	logger *zap.Logger
}

// New creates a Service without checks.
func New() *Service {
	return &Service{logger: zap.NewNop()}
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// With registers a named check. A nil checker is ignored.
func (s *Service) With(name string, c Checker) *Service {
	if c != nil {
		s.checks = append(s.checks, namedCheck{name: name, checker: c})
	}
	return s
}

// Names returns the registered check names, sorted.
func (s *Service) Names() []string {
	names := make([]string, len(s.checks))
	for i, c := range s.checks {
		names[i] = c.name
	}
	sort.Strings(names)
	return names
}

// Check runs all checks. The report is Healthy when every check passes,
// Unhealthy when every check fails and Degraded otherwise.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.checks))}

	failed := 0
	for _, c := range s.checks {
		if err := c.checker.Check(ctx); err != nil {
			failed++
			r.Checks[c.name] = CheckError
			if r.Errors == nil {
				r.Errors = make(map[string]string)
			}
			r.Errors[c.name] = err.Error()
			s.logger.Warn("Health check failed", zap.String("check", c.name), zap.Error(err))
			continue
		}
		r.Checks[c.name] = CheckOK
	}

	switch {
	case failed == 0:
		r.Status = Healthy
	case failed == len(s.checks):
		r.Status = Unhealthy
	default:
		r.Status = Degraded
	}
	return r
}
