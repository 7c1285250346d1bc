package audit

import (
	"fmt"
	"strings"
	"sync"
)

// OperationType classifies a persistence operation for audit purposes.
type OperationType int

const (
	OperationCreate OperationType = iota + 1
	OperationUpdate
)

func (o OperationType) String() string {
	switch o {
	case OperationCreate:
		return "CREATE"
	case OperationUpdate:
		return "UPDATE"
	default:
		return fmt.Sprintf("OperationType(%d)", int(o))
	}
}

// ParseOperationType accepts "create" or "update" in any case.
func ParseOperationType(s string) (OperationType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREATE":
		return OperationCreate, nil
	case "UPDATE":
		return OperationUpdate, nil
	default:
		return 0, fmt.Errorf("audit: unknown operation type %q", s)
	}
}

type registryEntry struct {
	op   OperationType
	skip bool
}

// Registry is the static table of audited operations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]registryEntry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registryEntry)}
}

// DefaultRegistry returns a registry preloaded with the write methods of
// go-repository-bun repositories. Upserts are classified as updates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, name := range []string{
		"Create", "CreateTx", "CreateMany", "CreateManyTx", "GetOrCreate", "GetOrCreateTx",
	} {
		r.Register(name, OperationCreate)
	}
	for _, name := range []string{
		"Update", "UpdateTx", "UpdateMany", "UpdateManyTx",
		"Upsert", "UpsertTx", "UpsertMany", "UpsertManyTx",
	} {
		r.Register(name, OperationUpdate)
	}
	return r
}

// Register classifies operation. Registering the same name twice keeps the last value.
func (r *Registry) Register(operation string, op OperationType) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[operation] = registryEntry{op: op}
	return r
}

// Skip marks operation as explicitly unaudited.
func (r *Registry) Skip(operation string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[operation] = registryEntry{skip: true}
	return r
}

// Lookup returns the classification of operation, if any.
func (r *Registry) Lookup(operation string) (OperationType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[operation]
	if !ok || e.skip {
		return 0, false
	}
	return e.op, true
}

// Resolve looks up "namespace.method" first and falls back to method.
// A Skip registered under the qualified name hides the fallback.
func (r *Registry) Resolve(namespace, method string) (OperationType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if namespace != "" {
		if e, ok := r.entries[namespace+"."+method]; ok {
			if e.skip {
				return 0, false
			}
			return e.op, true
		}
	}
	e, ok := r.entries[method]
	if !ok || e.skip {
		return 0, false
	}
	return e.op, true
}

// Operations returns the registered, non skipped operation names.
func (r *Registry) Operations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name, e := range r.entries {
		if !e.skip {
			names = append(names, name)
		}
	}
	return names
}
