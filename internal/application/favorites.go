package application

import (
	"context"
	"slices"
	"sync"
)

// Favorites is the ordered set of salon ids an owner has starred. Every
// change is written through to ClientState.
type Favorites struct {
	state ClientState
	owner string

	mu     sync.Mutex
	loaded bool
	ids    []string
}

func NewFavorites(state ClientState, owner string) *Favorites {
	return &Favorites{state: state, owner: owner}
}

func (f *Favorites) loadLocked(ctx context.Context) error {
	if f.loaded {
		return nil
	}
	ids, err := f.state.LoadFavorites(ctx, f.owner)
	if err != nil {
		return err
	}
	f.ids, f.loaded = ids, true
	return nil
}

func (f *Favorites) List(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(f.ids), nil
}

func (f *Favorites) Contains(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(ctx); err != nil {
		return false, err
	}
	return slices.Contains(f.ids, id), nil
}

func (f *Favorites) Add(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(ctx); err != nil {
		return err
	}
	if slices.Contains(f.ids, id) {
		return nil
	}
	return f.saveLocked(ctx, append(slices.Clone(f.ids), id))
}

func (f *Favorites) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(ctx); err != nil {
		return err
	}
	i := slices.Index(f.ids, id)
	if i < 0 {
		return nil
	}
	return f.saveLocked(ctx, slices.Delete(slices.Clone(f.ids), i, i+1))
}

// Toggle flips membership and reports whether id is now a favorite.
func (f *Favorites) Toggle(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(ctx); err != nil {
		return false, err
	}
	next := slices.Clone(f.ids)
	on := true
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
		on = false
	} else {
		next = append(next, id)
	}
	if err := f.saveLocked(ctx, next); err != nil {
		return false, err
	}
	return on, nil
}

func (f *Favorites) saveLocked(ctx context.Context, ids []string) error {
	if err := f.state.SaveFavorites(ctx, f.owner, ids); err != nil {
		return err
	}
	f.ids = ids
	return nil
}
