package expr

import (
	"fmt"
	"maps"
	"sync"
)

// Evaluator evaluates expressions against a shared symbol table.
type Evaluator struct {
	mu   sync.RWMutex
	syms map[string]float64
}

// New creates an Evaluator seeded with a copy of syms.
// Returns an error if any key is not a valid identifier.
func New(syms map[string]float64) (*Evaluator, error) {
	e := &Evaluator{syms: make(map[string]float64, len(syms))}
	for name, v := range syms {
		if err := e.Set(name, v); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Set defines or replaces a variable.
func (e *Evaluator) Set(name string, v float64) error {
	if !IsIdent(name) {
		return fmt.Errorf("variable %q: %w", name, ErrInvalidToken)
	}
	e.mu.Lock()
	e.syms[name] = v
	e.mu.Unlock()
	return nil
}

// Lookup returns the value of a variable.
func (e *Evaluator) Lookup(name string) (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.syms[name]
	return v, ok
}

// Symbols returns a copy of the symbol table.
func (e *Evaluator) Symbols() map[string]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return maps.Clone(e.syms)
}

// Evaluate evaluates input against the current symbol table.
func (e *Evaluator) Evaluate(input string) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return eval(input, func(name string) (float64, bool) {
		v, ok := e.syms[name]
		return v, ok
	})
}
