// Package store holds the shared mutable game state consulted and mutated
// by commands and rules. Entities, items, and temporary data are three
// separate namespaces; cross-rule communication within one chain run goes
// through the temporary namespace only.
package store

import (
	"github.com/nathoo/rulecore/engine/dice"
	"github.com/nathoo/rulecore/types"
)

// Op identifies the kind of mutation reported to observers.
type Op string

const (
	OpSet    Op = "set"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Space identifies which namespace a mutation touched.
type Space string

const (
	SpaceEntity Space = "entity"
	SpaceItem   Space = "item"
	SpaceTemp   Space = "temp"
)

// Change describes one store mutation for observers.
type Change struct {
	Op    Op
	Space Space
	Key   string
}

// Store is the mutable, observable state container. Execution is strictly
// single-threaded (the chain never runs two rules concurrently), so the
// store performs no locking; concurrent external callers must serialize
// themselves.
type Store struct {
	entities map[string]*types.Entity
	items    map[string]*types.Item
	temp     map[string]any

	roller    *dice.Roller
	observers []func(Change)
}

// New creates an empty store with the given dice roller. A nil roller is
// replaced with a zero-seeded one.
func New(roller *dice.Roller) *Store {
	if roller == nil {
		roller = dice.NewRoller(0)
	}
	return &Store{
		entities: map[string]*types.Entity{},
		items:    map[string]*types.Item{},
		temp:     map[string]any{},
		roller:   roller,
	}
}

// Roller returns the injected dice roller. Rules roll through this,
// never through a global source, so runs replay deterministically.
func (s *Store) Roller() *dice.Roller {
	return s.roller
}

// SetRoller replaces the dice roller (used to restore a replay position).
func (s *Store) SetRoller(r *dice.Roller) {
	s.roller = r
}

// Watch registers an observer invoked synchronously after every mutation.
func (s *Store) Watch(fn func(Change)) {
	s.observers = append(s.observers, fn)
}

func (s *Store) notify(c Change) {
	for _, fn := range s.observers {
		fn(c)
	}
}

// Entity returns the entity with the given ID.
func (s *Store) Entity(id string) (*types.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

// HasEntity reports whether an entity with the given ID exists.
func (s *Store) HasEntity(id string) bool {
	_, ok := s.entities[id]
	return ok
}

// SetEntity inserts or replaces an entity keyed by its ID.
func (s *Store) SetEntity(e *types.Entity) {
	s.entities[e.ID] = e
	s.notify(Change{Op: OpSet, Space: SpaceEntity, Key: e.ID})
}

// RemoveEntity deletes an entity. Removing a missing ID is a no-op.
func (s *Store) RemoveEntity(id string) {
	if _, ok := s.entities[id]; !ok {
		return
	}
	delete(s.entities, id)
	s.notify(Change{Op: OpRemove, Space: SpaceEntity, Key: id})
}

// EntityIDs returns the IDs of all stored entities in unspecified order.
func (s *Store) EntityIDs() []string {
	ids := make([]string, 0, len(s.entities))
	for id := range s.entities {
		ids = append(ids, id)
	}
	return ids
}

// Item returns the item with the given ID.
func (s *Store) Item(id string) (*types.Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// HasItem reports whether an item with the given ID exists.
func (s *Store) HasItem(id string) bool {
	_, ok := s.items[id]
	return ok
}

// SetItem inserts or replaces an item keyed by its ID.
func (s *Store) SetItem(it *types.Item) {
	s.items[it.ID] = it
	s.notify(Change{Op: OpSet, Space: SpaceItem, Key: it.ID})
}

// RemoveItem deletes an item. Removing a missing ID is a no-op.
func (s *Store) RemoveItem(id string) {
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	s.notify(Change{Op: OpRemove, Space: SpaceItem, Key: id})
}

// Temp returns a temporary-data entry.
func (s *Store) Temp(key string) (any, bool) {
	v, ok := s.temp[key]
	return v, ok
}

// TempInt returns a temporary entry as an int. Missing or non-numeric
// entries return 0.
func (s *Store) TempInt(key string) int {
	switch v := s.temp[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// TempString returns a temporary entry as a string, or "" if missing.
func (s *Store) TempString(key string) string {
	if v, ok := s.temp[key].(string); ok {
		return v
	}
	return ""
}

// SetTemp stores a temporary-data entry. Entries set by one rule are
// visible to all rules executed later within the same chain run.
func (s *Store) SetTemp(key string, value any) {
	s.temp[key] = value
	s.notify(Change{Op: OpSet, Space: SpaceTemp, Key: key})
}

// ClearTemp wipes the temporary namespace.
func (s *Store) ClearTemp() {
	s.temp = map[string]any{}
	s.notify(Change{Op: OpClear, Space: SpaceTemp})
}

// AdjustStat adds delta to an entity stat, clamping at zero, and returns
// the new value. Missing entities return 0.
func (s *Store) AdjustStat(id, stat string, delta int) int {
	e, ok := s.entities[id]
	if !ok {
		return 0
	}
	if e.Stats == nil {
		e.Stats = map[string]int{}
	}
	v := e.Stats[stat] + delta
	if v < 0 {
		v = 0
	}
	e.Stats[stat] = v
	s.notify(Change{Op: OpSet, Space: SpaceEntity, Key: id})
	return v
}
