// Package watcher runs periodic background jobs for the shell: the cart
// badge refresh and the unread notification sync.
package watcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medhelper/medhelper/internal/logging"
)

// Poller calls Fn once right away and then every Interval until the
// context is done. A failing call is logged and the next tick runs as
// usual.
type Poller struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single call. Zero means no limit beyond ctx.
	Timeout time.Duration
	Fn      func(ctx context.Context) error
	Log     logging.Logger
}

// Run blocks until ctx is done and returns nil.
func (p Poller) Run(ctx context.Context) error {
	log := p.Log
	if log == nil {
		log = logging.Nop{}
	}

	p.tick(ctx, log)

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.tick(ctx, log)
		case <-ctx.Done():
			return nil
		}
	}
}

func (p Poller) tick(ctx context.Context, log logging.Logger) {
	if ctx.Err() != nil {
		return
	}
	callCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	if err := p.Fn(callCtx); err != nil && ctx.Err() == nil {
		log.Warn(ctx, "poll failed", "watcher", p.Name, "error", err)
	}
}

// Group runs pollers until Stop is called. It can be started again after
// Stop. Its methods are safe for concurrent use.
type Group struct {
	pollers []Poller

	mu     sync.Mutex
	cancel context.CancelFunc
	eg     *errgroup.Group
}

func NewGroup(pollers ...Poller) *Group {
	return &Group{pollers: pollers}
}

// Start launches every poller on a context derived from ctx. It does
// nothing if the group is already running.
func (g *Group) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range g.pollers {
		eg.Go(func() error { return p.Run(ctx) })
	}
	g.cancel, g.eg = cancel, eg
}

// Running reports whether Start was called without a matching Stop.
func (g *Group) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

// Stop cancels the pollers and waits for them to return. It must not be
// called from inside a poller's Fn.
func (g *Group) Stop() error {
	g.mu.Lock()
	cancel, eg := g.cancel, g.eg
	g.cancel, g.eg = nil, nil
	g.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	return eg.Wait()
}
