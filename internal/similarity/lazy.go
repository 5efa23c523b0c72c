package similarity

import (
	"context"
	"sync"
)

// Lazy defers construction of an expensive Comparer (model download, warm-up)
// until the first Compare call. The first caller runs the factory; concurrent
// callers block on the same in-flight initialization; later callers reuse the
// cached handle. A failed initialization is cached and returned to every
// subsequent caller rather than silently retried.
type Lazy struct {
	factory func(ctx context.Context) (Comparer, error)

	once     sync.Once
	comparer Comparer
	initErr  error
}

// NewLazy wraps factory in a single-initialization guard. The factory runs at
// most once for the lifetime of the Lazy value.
func NewLazy(factory func(ctx context.Context) (Comparer, error)) *Lazy {
	return &Lazy{factory: factory}
}

func (l *Lazy) init(ctx context.Context) (Comparer, error) {
	l.once.Do(func() {
		l.comparer, l.initErr = l.factory(ctx)
	})
	return l.comparer, l.initErr
}

// Compare initializes the underlying comparer on first use and delegates.
func (l *Lazy) Compare(ctx context.Context, a, b []string) (Matrix, error) {
	c, err := l.init(ctx)
	if err != nil {
		return nil, err
	}
	return c.Compare(ctx, a, b)
}
