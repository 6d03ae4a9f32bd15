// Package symbols answers "which symbol starts at this address" for a
// loaded image.
package symbols

import (
	"sort"
	"sync"

	"github.com/ianlancetaylor/demangle"

	"roptool/internal/binfmt"
)

type entry struct {
	addr uint64
	name string
}

// Table is a read-only address to name index. Lookups are safe for
// concurrent use.
type Table struct {
	entries  []entry
	demangle bool

	mu    sync.RWMutex
	cache map[string]string
}

// Option configures a Table.
type Option func(*Table)

// WithDemangle renders C++ and Rust names in their source form.
func WithDemangle() Option {
	return func(t *Table) { t.demangle = true }
}

// New indexes syms. When several symbols share an address the first one
// in syms wins.
func New(syms []binfmt.Symbol, opts ...Option) *Table {
	t := &Table{cache: make(map[string]string)}
	for _, o := range opts {
		o(t)
	}

	t.entries = make([]entry, 0, len(syms))
	for _, s := range syms {
		if s.Name == "" {
			continue
		}
		t.entries = append(t.entries, entry{addr: s.Addr, name: s.Name})
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].addr < t.entries[j].addr
	})

	// drop duplicates, keeping the first name seen per address
	out := t.entries[:0]
	for _, e := range t.entries {
		if len(out) > 0 && out[len(out)-1].addr == e.addr {
			continue
		}
		out = append(out, e)
	}
	t.entries = out
	return t
}

// Len is the number of distinct symbol addresses.
func (t *Table) Len() int { return len(t.entries) }

// ByAddress returns the symbol starting exactly at addr.
func (t *Table) ByAddress(addr uint64) (string, bool) {
	if t == nil {
		return "", false
	}
	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].addr >= addr
	})
	if i == len(t.entries) || t.entries[i].addr != addr {
		return "", false
	}
	name := t.entries[i].name
	if t.demangle {
		name = t.demangled(name)
	}
	return name, true
}

// All yields every symbol in address order, demangled when enabled.
func (t *Table) All(yield func(addr uint64, name string) bool) {
	for _, e := range t.entries {
		name := e.name
		if t.demangle {
			name = t.demangled(name)
		}
		if !yield(e.addr, name) {
			return
		}
	}
}

func (t *Table) demangled(mangled string) string {
	t.mu.RLock()
	if d, ok := t.cache[mangled]; ok {
		t.mu.RUnlock()
		return d
	}
	t.mu.RUnlock()

	d := demangle.Filter(mangled, demangle.NoClones)

	t.mu.Lock()
	t.cache[mangled] = d
	t.mu.Unlock()
	return d
}
