// Package startup brings service dependencies up in registration
// order, retrying the whole set with fibonacci backoff, and tears them
// down in reverse on shutdown.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

// Dependency is one startable piece of the service, typically the
// Kafka consumer or the HTTP server.
type Dependency interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type status int

const (
	statusPending status = iota
	statusStarted
	statusStopped
	statusFailed
)

type Startup struct {
	dependencies []Dependency
	logger       ectologger.Logger
	statuses     map[string]status
	maxAttempts  int
}

func NewStartup(logger ectologger.Logger, maxAttempts int) *Startup {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Startup{
		logger:      logger,
		statuses:    make(map[string]status),
		maxAttempts: maxAttempts,
	}
}

// AddDependency registers a dependency. Registration order is start
// order; Stop runs in reverse.
func (s *Startup) AddDependency(dependency Dependency) {
	s.dependencies = append(s.dependencies, dependency)
}

func (s *Startup) Start(ctx context.Context) error {
	var lastErr error

	a, b := 1, 1
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithField("attempt", attempt).Infof("Beginning startup attempt %d", attempt)

		lastErr = nil
		for _, dependency := range s.dependencies {
			if err := s.startDependency(ctx, dependency); err != nil {
				s.logger.WithError(err).Errorf("Startup dependency '%s' attempt %d failed", dependency.Name(), attempt)
				lastErr = err
				break
			}
		}

		if lastErr == nil {
			return nil
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("startup failed after %d attempts: %w", attempt, lastErr)
		}

		s.logger.Infof("Retrying in %d seconds (attempt %d/%d)", a, attempt, s.maxAttempts)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(a) * time.Second):
		}
		a, b = b, a+b
	}

	return lastErr
}

func (s *Startup) startDependency(ctx context.Context, dependency Dependency) error {
	if s.statuses[dependency.Name()] == statusStarted {
		return nil
	}

	s.logger.WithField("dependency", dependency.Name()).Infof("Starting dependency '%s'", dependency.Name())
	if err := dependency.Start(ctx); err != nil {
		s.statuses[dependency.Name()] = statusFailed
		return err
	}
	s.statuses[dependency.Name()] = statusStarted
	return nil
}

func (s *Startup) Stop(ctx context.Context) error {
	for i := len(s.dependencies) - 1; i >= 0; i-- {
		dependency := s.dependencies[i]
		if s.statuses[dependency.Name()] != statusStarted {
			continue
		}

		s.logger.WithField("dependency", dependency.Name()).Infof("Stopping dependency '%s'", dependency.Name())
		if err := dependency.Stop(ctx); err != nil {
			s.logger.WithError(err).WithField("dependency", dependency.Name()).Errorf("Failed to stop dependency '%s'", dependency.Name())
			return err
		}
		s.statuses[dependency.Name()] = statusStopped
	}
	return nil
}
