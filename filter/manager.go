package filter

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/s0up4200/omdbq/omdb"
)

// Manager keeps named filter presets and applies filters to record sets
type Manager struct {
	compiler Compiler
	filters  map[string]CompiledFilter
	mu       sync.RWMutex
}

// ManagerOption configures a filter manager
type ManagerOption func(*Manager)

// WithCompiler sets a custom compiler
func WithCompiler(compiler Compiler) ManagerOption {
	return func(m *Manager) {
		m.compiler = compiler
	}
}

// NewManager creates a new filter manager
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		compiler: NewExprCompiler(WithCache(100)),
		filters:  make(map[string]CompiledFilter),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

var _ Applier = (*Manager)(nil)

// RegisterFilter registers a new preset or updates an existing one
func (m *Manager) RegisterFilter(name, expression string) error {
	filter, err := m.compiler.Compile(expression)
	if err != nil {
		return fmt.Errorf("failed to compile filter '%s': %w", name, err)
	}

	m.mu.Lock()
	m.filters[name] = filter
	m.mu.Unlock()

	return nil
}

// RegisterFilters registers multiple presets at once. Nothing is registered
// unless every expression compiles.
func (m *Manager) RegisterFilters(filters map[string]string) error {
	compiled := make(map[string]CompiledFilter, len(filters))

	for name, expr := range filters {
		filter, err := m.compiler.Compile(expr)
		if err != nil {
			return fmt.Errorf("failed to compile filter '%s': %w", name, err)
		}
		compiled[name] = filter
	}

	m.mu.Lock()
	maps.Copy(m.filters, compiled)
	m.mu.Unlock()

	return nil
}

// GetFilter returns a compiled preset by name
func (m *Manager) GetFilter(name string) (CompiledFilter, bool) {
	m.mu.RLock()
	filter, exists := m.filters[name]
	m.mu.RUnlock()
	return filter, exists
}

// ListFilters returns all registered preset names, sorted
func (m *Manager) ListFilters() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Sorted(maps.Keys(m.filters))
}

// Compile compiles an ad-hoc expression with the manager's compiler
func (m *Manager) Compile(expression string) (CompiledFilter, error) {
	return m.compiler.Compile(expression)
}

// Combine builds a filter from an ad-hoc expression and a list of preset
// names. A record must match all of them. With nothing to combine the
// returned filter is nil.
func (m *Manager) Combine(expression string, presets []string) (Filter, error) {
	var parts allOf

	for _, name := range presets {
		f, ok := m.GetFilter(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
		}
		parts = append(parts, f)
	}

	if expression != "" {
		f, err := m.compiler.Compile(expression)
		if err != nil {
			return nil, err
		}
		parts = append(parts, f)
	}

	switch len(parts) {
	case 0:
		return nil, nil
	case 1:
		return parts[0], nil
	default:
		return parts, nil
	}
}

// Apply returns the records matching filter. A nil filter matches everything.
func (m *Manager) Apply(ctx context.Context, filter Filter, records []omdb.Record) ([]omdb.Record, error) {
	if filter == nil {
		return records, nil
	}
	return Apply(ctx, filter, records)
}

type allOf []Filter

func (a allOf) Evaluate(record omdb.Record) bool {
	for _, f := range a {
		if !f.Evaluate(record) {
			return false
		}
	}
	return true
}
