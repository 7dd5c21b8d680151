package render

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-kb/internal/node"
)

// lazyCache forces every Lazy at most once per render call.
type lazyCache struct {
	mu      sync.Mutex
	entries map[*node.Lazy]*lazyEntry
	limit   int
}

type lazyEntry struct {
	once   sync.Once
	result node.Node
	err    error
}

func newLazyCache(limit int) *lazyCache {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	return &lazyCache{
		entries: map[*node.Lazy]*lazyEntry{},
		limit:   limit,
	}
}

func (c *lazyCache) force(ctx context.Context, lazy *node.Lazy) (node.Node, error) {
	c.mu.Lock()
	entry, ok := c.entries[lazy]
	if !ok {
		entry = &lazyEntry{}
		c.entries[lazy] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.result, entry.err = produce(ctx, lazy)
	})
	return entry.result, entry.err
}

// resolve forces lazy until it yields a non-lazy node. A chain that yields
// a lazy it already passed through fails instead of spinning.
func (c *lazyCache) resolve(ctx context.Context, n node.Node) (node.Node, error) {
	var seen map[*node.Lazy]struct{}
	for {
		lazy, ok := n.(*node.Lazy)
		if !ok || lazy == nil {
			return n, nil
		}
		if _, again := seen[lazy]; again {
			return nil, fmt.Errorf("%w: producer chain yields itself", ErrLazyProducer)
		}
		if seen == nil {
			seen = map[*node.Lazy]struct{}{}
		}
		seen[lazy] = struct{}{}
		forced, err := c.force(ctx, lazy)
		if err != nil {
			return nil, err
		}
		n = forced
	}
}

// resolveAll forces the lazy siblings within children concurrently and
// returns the resolved nodes in their original positions.
func (c *lazyCache) resolveAll(ctx context.Context, children []node.Node) ([]node.Node, error) {
	pending := 0
	for _, child := range children {
		if _, ok := child.(*node.Lazy); ok {
			pending++
		}
	}
	if pending == 0 {
		return children, nil
	}

	resolved := make([]node.Node, len(children))
	copy(resolved, children)
	if pending == 1 {
		for i, child := range children {
			if _, ok := child.(*node.Lazy); ok {
				n, err := c.resolve(ctx, child)
				if err != nil {
					return nil, err
				}
				resolved[i] = n
			}
		}
		return resolved, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.limit)
	for i, child := range children {
		if _, ok := child.(*node.Lazy); !ok {
			continue
		}
		group.Go(func() error {
			n, err := c.resolve(groupCtx, child)
			if err != nil {
				return err
			}
			resolved[i] = n
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func produce(ctx context.Context, lazy *node.Lazy) (result node.Node, err error) {
	if lazy.Produce == nil {
		return nil, fmt.Errorf("%w: producer is nil", ErrLazyProducer)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%w: panic: %v", ErrLazyProducer, r)
		}
	}()
	return lazy.Produce(ctx)
}
