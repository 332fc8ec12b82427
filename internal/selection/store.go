// Package selection tracks which wallet addresses are selected within one view.
package selection

import (
	"strings"
	"sync"
)

// Store is a per-view set of selected wallet addresses.
//
// Newly selected addresses are announced exactly once to the onSelect hook.
// Removals are never announced. Addresses compare case-insensitively and keep
// the casing they were first selected with.
type Store struct {
	mu       sync.Mutex
	members  map[string]struct{}
	order    []string
	onSelect func(address string)
}

// NewStore creates an empty Store. onSelect may be nil.
func NewStore(onSelect func(address string)) *Store {
	return &Store{
		members:  make(map[string]struct{}),
		onSelect: onSelect,
	}
}

// Toggle removes address if selected, otherwise selects it and notifies.
// It returns the new membership.
func (s *Store) Toggle(address string) bool {
	s.mu.Lock()
	if _, ok := s.members[key(address)]; ok {
		s.remove(address)
		s.mu.Unlock()
		return false
	}
	s.add(address)
	s.mu.Unlock()

	s.notify([]string{address})
	return true
}

// SelectAll selects every address not already selected and notifies once per
// newly added address, in input order.
func (s *Store) SelectAll(addresses []string) int {
	s.mu.Lock()
	added := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if _, ok := s.members[key(addr)]; ok {
			continue
		}
		s.add(addr)
		added = append(added, addr)
	}
	s.mu.Unlock()

	s.notify(added)
	return len(added)
}

// DeselectAll empties the set without notifying.
func (s *Store) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = make(map[string]struct{})
	s.order = nil
}

// IsSelected reports whether address is selected.
func (s *Store) IsSelected(address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[key(address)]
	return ok
}

// Size returns the number of selected addresses.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

// Addresses returns the selected addresses in selection order.
func (s *Store) Addresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// add must be called with the lock held.
func (s *Store) add(address string) {
	s.members[key(address)] = struct{}{}
	s.order = append(s.order, address)
}

// remove must be called with the lock held.
func (s *Store) remove(address string) {
	k := key(address)
	delete(s.members, k)
	for i, a := range s.order {
		if key(a) == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// key folds hex casing so checksummed and lowercase forms match.
func key(address string) string {
	return strings.ToLower(address)
}

// notify runs outside the lock so the hook may call back into the store.
func (s *Store) notify(addresses []string) {
	if s.onSelect == nil {
		return
	}
	for _, addr := range addresses {
		s.onSelect(addr)
	}
}
