package models

import "fmt"

// TypeTable is an ordered map from type name to descriptor. Order is the
// declaration order: an entry is declared after the entries it depends on.
type TypeTable struct {
	names   []string
	entries map[string]TypeDesc
}

// NewTypeTable creates an empty table.
func NewTypeTable() *TypeTable {
	return &TypeTable{entries: make(map[string]TypeDesc)}
}

// Get returns the descriptor registered under name.
func (t *TypeTable) Get(name string) (TypeDesc, bool) {
	d, ok := t.entries[name]
	return d, ok
}

// Has reports whether name is registered.
func (t *TypeTable) Has(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// Len returns the number of entries.
func (t *TypeTable) Len() int {
	return len(t.names)
}

// Names returns the entry names in declaration order.
func (t *TypeTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Put replaces an existing entry in place or appends a new one.
func (t *TypeTable) Put(name string, desc TypeDesc) {
	if _, exists := t.entries[name]; !exists {
		t.names = append(t.names, name)
	}
	t.entries[name] = desc
}

// InsertBefore adds name immediately before anchor. An existing entry is
// replaced in place instead, and a missing anchor degrades to Put.
func (t *TypeTable) InsertBefore(anchor, name string, desc TypeDesc) {
	if _, exists := t.entries[name]; exists {
		t.entries[name] = desc
		return
	}
	idx := t.indexOf(anchor)
	if idx < 0 {
		t.Put(name, desc)
		return
	}
	t.names = append(t.names, "")
	copy(t.names[idx+1:], t.names[idx:])
	t.names[idx] = name
	t.entries[name] = desc
}

// Rename moves the entry oldName to newName, keeping its position, and
// rewrites every reference to oldName in the table.
func (t *TypeTable) Rename(oldName, newName string) error {
	idx := t.indexOf(oldName)
	if idx < 0 {
		return fmt.Errorf("type %q is not in the table", oldName)
	}
	if _, exists := t.entries[newName]; exists {
		return fmt.Errorf("type %q is already in the table", newName)
	}
	t.names[idx] = newName
	t.entries[newName] = t.entries[oldName]
	delete(t.entries, oldName)

	rename := func(n string) string {
		if n == oldName {
			return newName
		}
		return n
	}
	for _, n := range t.names {
		t.entries[n] = RewriteReferences(t.entries[n], rename)
	}
	return nil
}

func (t *TypeTable) indexOf(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

// SortByDependencies reorders the table so that every entry follows the
// entries it references. Entries already in a valid order keep their
// relative positions.
func (t *TypeTable) SortByDependencies() {
	const (
		visiting = 1
		done     = 2
	)
	order := make([]string, 0, len(t.names))
	state := make(map[string]int, len(t.names))
	var visit func(string)
	visit = func(name string) {
		if state[name] != 0 {
			return
		}
		state[name] = visiting
		for _, ref := range References(t.entries[name]) {
			if _, ok := t.entries[ref]; ok {
				visit(ref)
			}
		}
		state[name] = done
		order = append(order, name)
	}
	for _, name := range t.names {
		visit(name)
	}
	t.names = order
}
