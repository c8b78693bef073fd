package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Deduplicator shares one in-flight call among concurrent callers asking for
// the same key. The entry is dropped as soon as the call settles, so the next
// call with that key starts fresh.
type Deduplicator struct {
	group singleflight.Group
}

func NewDeduplicator() *Deduplicator { return &Deduplicator{} }

// Dedupe runs fn once per key among concurrent callers. fn receives a context
// detached from the first caller's cancellation so one caller leaving does not
// fail the others.
func Dedupe[T any](ctx context.Context, d *Deduplicator, key string, fn func(context.Context) (T, error)) (T, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := d.group.Do(key, func() (any, error) {
		return fn(shared)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("dedupe %q: unexpected result type %T", key, v)
	}
	return out, nil
}
