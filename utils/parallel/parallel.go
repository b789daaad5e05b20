// Package parallel runs named functions concurrently and keeps the full
// failure record, so the first thing that went wrong can be told apart
// from the cascade it caused.
package parallel

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/FrenchMajesty/remote-shell/utils/logger"
)

// Failure records one function's error and when it happened.
type Failure struct {
	Name string
	Time time.Time
	Err  error
}

// Group runs functions concurrently under a shared context. Failures are
// recorded with timestamps rather than returned one-at-a-time, and panics
// are captured as failures instead of taking the process down.
type Group struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    logger.Logger

	mu       sync.Mutex
	failures []Failure
}

// Option customizes a Group.
type Option func(*Group)

// WithLogger reports failures to the given logger as they happen.
func WithLogger(log logger.Logger) Option {
	return func(g *Group) { g.log = log }
}

// NewGroup creates a group whose functions run under a context derived
// from ctx.
func NewGroup(ctx context.Context, opts ...Option) *Group {
	groupCtx, cancel := context.WithCancel(ctx)
	g := &Group{
		ctx:    groupCtx,
		cancel: cancel,
		log:    logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Go starts fn in its own goroutine. The name identifies it in failure
// records and logs.
func (g *Group) Go(name string, fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.record(name, fmt.Errorf("panic: %v", r))
			}
		}()
		if err := fn(g.ctx); err != nil {
			g.record(name, err)
		}
	}()
}

// Abort cancels the group context. Functions that honor their context wind
// down; Wait still collects them.
func (g *Group) Abort() {
	g.cancel()
}

// Wait blocks until every function has returned and reports the earliest
// failure, or nil when all succeeded.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()

	failures := g.Failures()
	if len(failures) == 0 {
		return nil
	}
	first := failures[0]
	return fmt.Errorf("%s: %w", first.Name, first.Err)
}

// Failures returns every recorded failure ordered by occurrence.
func (g *Group) Failures() []Failure {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Failure, len(g.failures))
	copy(out, g.failures)
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

func (g *Group) record(name string, err error) {
	g.mu.Lock()
	g.failures = append(g.failures, Failure{Name: name, Time: time.Now(), Err: err})
	g.mu.Unlock()
	g.log.Errorf("%s: %v", name, err)
}
