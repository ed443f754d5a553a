// models/keyed_set.go
package models

// KeyedSet is an insertion-ordered set keyed by a derived string.
// The first value added under a key wins; later adds are ignored.
type KeyedSet[T any] struct {
	keyOf func(T) string
	order []string
	items map[string]T
}

// NewKeyedSet returns an empty set using keyOf to derive keys.
func NewKeyedSet[T any](keyOf func(T) string) *KeyedSet[T] {
	return &KeyedSet[T]{
		keyOf: keyOf,
		items: make(map[string]T),
	}
}

// NewRecordSet returns a set of proposal records keyed by identity.
func NewRecordSet() *KeyedSet[ProposalRecord] {
	return NewKeyedSet(ProposalRecord.Key)
}

// NewKeySet returns a set of bare identity keys.
func NewKeySet(keys ...string) *KeyedSet[string] {
	s := NewKeyedSet(func(k string) string { return k })
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts v unless its key is already present. It reports whether v was added.
func (s *KeyedSet[T]) Add(v T) bool {
	key := s.keyOf(v)
	if _, exists := s.items[key]; exists {
		return false
	}
	s.items[key] = v
	s.order = append(s.order, key)
	return true
}

// AddAll adds every value in order and returns how many were new.
func (s *KeyedSet[T]) AddAll(values []T) int {
	added := 0
	for _, v := range values {
		if s.Add(v) {
			added++
		}
	}
	return added
}

func (s *KeyedSet[T]) Has(key string) bool {
	_, ok := s.items[key]
	return ok
}

func (s *KeyedSet[T]) Len() int {
	return len(s.order)
}

// Values returns the values in insertion order.
func (s *KeyedSet[T]) Values() []T {
	out := make([]T, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}
