package member

import (
	"reflect"
	"strings"
	"sync"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
)

// Catalog maps type names to their member tables. It is filled during
// registration and read-only once frozen.
type Catalog struct {
	byName map[string]*TypeEntry
	byType map[reflect.Type]*TypeEntry
	order  []string
	mu     sync.RWMutex
	frozen bool
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName: make(map[string]*TypeEntry),
		byType: make(map[reflect.Type]*TypeEntry),
	}
}

// Add registers an entry. Names and Go types must be unique.
func (c *Catalog) Add(e *TypeEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Detail("catalog is frozen; cannot add %s", e.Name).
			Build()
	}
	if _, ok := c.byName[e.Name]; ok {
		return errors.New(errors.PhaseRegister, errors.KindConflict).
			Detail("type %q already registered", e.Name).
			Build()
	}
	if prev, ok := c.byType[e.Type]; ok {
		return errors.New(errors.PhaseRegister, errors.KindConflict).
			GoType(e.Type.String()).
			Detail("type already registered as %q", prev.Name).
			Build()
	}
	c.byName[e.Name] = e
	c.byType[e.Type] = e
	c.order = append(c.order, e.Name)
	return nil
}

// Freeze makes the catalog read-only.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

// Lookup finds an entry by name, falling back to a case-insensitive match.
func (c *Catalog) Lookup(name string) (*TypeEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.byName[name]; ok {
		return e, true
	}
	for _, n := range c.order {
		if strings.EqualFold(n, name) {
			return c.byName[n], true
		}
	}
	return nil, false
}

// ForValue finds the entry for v's dynamic type, trying T for a *T.
func (c *Catalog) ForValue(v any) (*TypeEntry, bool) {
	if v == nil {
		return nil, false
	}
	t := reflect.TypeOf(v)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.byType[t]; ok {
		return e, true
	}
	if t.Kind() == reflect.Pointer {
		if e, ok := c.byType[t.Elem()]; ok {
			return e, true
		}
	}
	for _, n := range c.order {
		if e := c.byName[n]; e.Type.Kind() == reflect.Interface && t.Implements(e.Type) {
			return e, true
		}
	}
	return nil, false
}

// Names returns the registered type names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Len returns the number of registered types.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// lookupFold finds members by exact name, then case-insensitively.
func lookupFold[V any](m map[string]V, name string) (V, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for _, k := range sortedKeys(m) {
		if strings.EqualFold(k, name) {
			return m[k], true
		}
	}
	var zero V
	return zero, false
}

// Method returns the instance methods called name.
func (e *TypeEntry) Method(name string) []*invoke.Member {
	ms, _ := lookupFold(e.Methods, name)
	return ms
}

// Static returns the static methods called name.
func (e *TypeEntry) Static(name string) []*invoke.Member {
	ms, _ := lookupFold(e.Statics, name)
	return ms
}

// Field returns the instance field getter called name.
func (e *TypeEntry) Field(name string) (*invoke.Member, bool) {
	return lookupFold(e.Fields, name)
}

// StaticField returns the static field called name.
func (e *TypeEntry) StaticField(name string) (*invoke.Member, bool) {
	return lookupFold(e.StaticFields, name)
}
