package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry associates small integer unit numbers with open files, so that
// callers addressing inputs by unit number share one owner for their
// lifecycle. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	files map[int]*File
}

// NewRegistry creates an empty registry that opens files with OpenFile.
func NewRegistry() *Registry {
	return &Registry{
		files: make(map[int]*File),
	}
}

// Open opens name and binds it to unit.
func (r *Registry) Open(unit int, name string) (*File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.files[unit]; ok {
		return nil, fmt.Errorf("unit %d: %w", unit, ErrUnitInUse)
	}
	f, err := OpenFile(name)
	if err != nil {
		return nil, err
	}
	r.files[unit] = f
	return f, nil
}

// Get retrieves the file bound to unit
func (r *Registry) Get(unit int) (*File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.files[unit]
	if !ok {
		return nil, fmt.Errorf("unit %d: %w", unit, ErrUnitNotOpen)
	}
	return f, nil
}

// Close closes the file bound to unit and frees the unit number.
func (r *Registry) Close(unit int) error {
	r.mu.Lock()
	f, ok := r.files[unit]
	delete(r.files, unit)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("unit %d: %w", unit, ErrUnitNotOpen)
	}
	return f.Close()
}

// Units returns the open unit numbers in ascending order
func (r *Registry) Units() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]int, 0, len(r.files))
	for u := range r.files {
		units = append(units, u)
	}
	sort.Ints(units)
	return units
}

// CloseAll closes every open file.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	files := r.files
	r.files = make(map[int]*File)
	r.mu.Unlock()

	var errs []error
	for unit, f := range files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unit %d: %w", unit, err))
		}
	}
	return errors.Join(errs...)
}
