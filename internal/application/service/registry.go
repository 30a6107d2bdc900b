package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"signup-e2e/internal/application/port/input"
)

var (
	ErrDuplicateName = errors.New("name already registered")
	ErrUnknownName   = errors.New("name not registered")
)

type registryEntry[T any] struct {
	item   T
	groups []string
}

// Registry keeps named items in registration order. Items can carry groups
// so a run can be narrowed with a RunFilter.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[string]registryEntry[T]
	order   []string
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]registryEntry[T]),
	}
}

func (r *Registry[T]) Register(name string, item T, groups ...string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("registry: empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicateName)
	}
	r.entries[name] = registryEntry[T]{item: item, groups: append([]string(nil), groups...)}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for static tables; a duplicate is a programming error.
func (r *Registry[T]) MustRegister(name string, item T, groups ...string) {
	if err := r.Register(name, item, groups...); err != nil {
		panic(err)
	}
}

func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.item, ok
}

func (r *Registry[T]) GroupsOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.entries[name].groups...)
}

func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]T, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.entries[name].item)
	}
	return result
}

// Groups lists every group used by a registered item, sorted.
func (r *Registry[T]) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, e := range r.entries {
		for _, g := range e.groups {
			seen[g] = struct{}{}
		}
	}
	result := make([]string, 0, len(seen))
	for g := range seen {
		result = append(result, g)
	}
	sort.Strings(result)
	return result
}

// Select returns the names matching the filter in registration order. An
// item matches when it is named in Names or belongs to one of Groups; an
// empty filter matches everything. Unknown names are an error.
func (r *Registry[T]) Select(filter input.RunFilter) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make(map[string]bool, len(filter.Names))
	var unknown []string
	for _, n := range filter.Names {
		if _, ok := r.entries[n]; !ok {
			unknown = append(unknown, n)
			continue
		}
		names[n] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(unknown, ", "), ErrUnknownName)
	}

	groups := make(map[string]bool, len(filter.Groups))
	for _, g := range filter.Groups {
		groups[g] = true
	}

	result := make([]string, 0, len(r.order))
	for _, name := range r.order {
		if len(names) == 0 && len(groups) == 0 {
			result = append(result, name)
			continue
		}
		if names[name] {
			result = append(result, name)
			continue
		}
		for _, g := range r.entries[name].groups {
			if groups[g] {
				result = append(result, name)
				break
			}
		}
	}
	return result, nil
}
