package schema

import (
	"sort"
)

// Registry holds the known migrations keyed by version pair. It is not safe
// for concurrent registration; build it once at startup and share it
// read-only afterwards.
type Registry struct {
	byKey  map[Key]Migration
	byFrom map[int][]Migration
}

// NewRegistry builds a registry from the given migrations.
func NewRegistry(migrations ...Migration) (*Registry, error) {
	r := &Registry{
		byKey:  make(map[Key]Migration),
		byFrom: make(map[int][]Migration),
	}
	for _, m := range migrations {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a migration. The migration's statements are copied.
func (r *Registry) Register(m Migration) error {
	if err := m.validate(); err != nil {
		return err
	}

	key := m.Key()
	if existing, ok := r.byKey[key]; ok {
		return &DuplicateMigrationError{Key: key, Existing: existing.Name, Duplicate: m.Name}
	}

	m = m.clone()
	r.byKey[key] = m

	// Widest jump first so Path prefers multi-step migrations.
	steps := append(r.byFrom[m.From], m)
	sort.Slice(steps, func(i, j int) bool { return steps[i].To > steps[j].To })
	r.byFrom[m.From] = steps
	return nil
}

// Len returns the number of registered migrations.
func (r *Registry) Len() int {
	return len(r.byKey)
}

// Latest returns the highest version any migration reaches, or 0 when the
// registry is empty.
func (r *Registry) Latest() int {
	latest := 0
	for key := range r.byKey {
		if key.To > latest {
			latest = key.To
		}
	}
	return latest
}

// Oldest returns the lowest starting version, or 0 when the registry is
// empty.
func (r *Registry) Oldest() int {
	first := true
	oldest := 0
	for key := range r.byKey {
		if first || key.From < oldest {
			oldest = key.From
			first = false
		}
	}
	return oldest
}

// Migrations returns the registered migrations ordered by From, then To.
func (r *Registry) Migrations() []Migration {
	result := make([]Migration, 0, len(r.byKey))
	for _, m := range r.byKey {
		result = append(result, m.clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].From != result[j].From {
			return result[i].From < result[j].From
		}
		return result[i].To < result[j].To
	})
	return result
}

// Validate checks that every registered starting version has a chain of
// migrations reaching Latest. The first start without one is reported as a
// GapError.
func (r *Registry) Validate() error {
	if len(r.byKey) == 0 {
		return nil
	}

	latest := r.Latest()
	starts := make([]int, 0, len(r.byFrom))
	for from := range r.byFrom {
		starts = append(starts, from)
	}
	sort.Ints(starts)

	for _, from := range starts {
		if _, err := r.Path(from, latest); err != nil {
			return &GapError{From: from, Latest: latest}
		}
	}
	return nil
}

// Path returns the migrations leading from one version to another, in the
// order they must be applied. Equal versions yield an empty path.
func (r *Registry) Path(from, to int) ([]Migration, error) {
	if to < from {
		return nil, &NoPathError{From: from, To: to, Err: ErrDowngrade}
	}
	if from == to {
		return nil, nil
	}

	dead := make(map[int]bool)
	path, ok := r.search(from, to, nil, dead)
	if !ok {
		return nil, &NoPathError{From: from, To: to}
	}

	result := make([]Migration, len(path))
	for i, m := range path {
		result[i] = m.clone()
	}
	return result, nil
}

func (r *Registry) search(current, target int, path []Migration, dead map[int]bool) ([]Migration, bool) {
	if current == target {
		return path, true
	}
	if dead[current] {
		return nil, false
	}

	for _, m := range r.byFrom[current] {
		if m.To > target {
			continue
		}
		if found, ok := r.search(m.To, target, append(path, m), dead); ok {
			return found, true
		}
	}

	dead[current] = true
	return nil, false
}
