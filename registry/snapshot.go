package registry

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/blocknative/opkeys/structs"
)

// Snapshot is the local mirror of the registry. It is safe for concurrent
// reads, mutations are expected to come from a single sync owner.
type Snapshot struct {
	mu sync.RWMutex

	count      uint64
	countKnown bool

	operators []structs.Operator
	keys      []structs.SigningKey

	// operator index -> TotalSigningKeys at the last successful key fetch
	synced map[uint64]uint64

	operatorViolations []error
	keyViolations      []error
}

func NewSnapshot() *Snapshot {
	return &Snapshot{synced: make(map[uint64]uint64)}
}

// OperatorsCount returns the last fetched operators count.
// The flag is false until the count is fetched once.
func (s *Snapshot) OperatorsCount() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count, s.countKnown
}

func (s *Snapshot) Operators() []structs.Operator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.operators)
}

func (s *Snapshot) Operator(index uint64) (structs.Operator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.operators {
		if o.Index == index {
			return o, true
		}
	}
	return structs.Operator{}, false
}

// SetOperators replaces the operator list.
func (s *Snapshot) SetOperators(ops []structs.Operator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.operators = sortOperators(slices.Clone(ops))
}

func (s *Snapshot) Keys() []structs.SigningKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneKeys(s.keys)
}

func (s *Snapshot) OperatorKeys(operatorIndex uint64) []structs.SigningKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []structs.SigningKey
	for _, k := range s.keys {
		if k.OperatorIndex == operatorIndex {
			out = append(out, cloneKey(k))
		}
	}
	return out
}

// SetKeys replaces the key list. Every operator present in keys is
// considered synced up to its current TotalSigningKeys, or up to its
// highest key index when the operator is unknown.
func (s *Snapshot) SetKeys(keys []structs.SigningKey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = sortKeys(cloneKeys(keys))
	s.synced = make(map[uint64]uint64)
	for _, k := range s.keys {
		if k.Index+1 > s.synced[k.OperatorIndex] {
			s.synced[k.OperatorIndex] = k.Index + 1
		}
	}
	for _, o := range s.operators {
		if _, ok := s.synced[o.Index]; ok {
			s.synced[o.Index] = o.TotalSigningKeys
		}
	}
}

// Violations returns invariant violations seen by the last operator and key syncs.
func (s *Snapshot) Violations() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]error, 0, len(s.operatorViolations)+len(s.keyViolations))
	out = append(out, s.operatorViolations...)
	return append(out, s.keyViolations...)
}

func (s *Snapshot) syncedCount(operatorIndex uint64) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.synced[operatorIndex]
	return c, ok
}

// mergeOperators stores a partial operator sync, other operators are kept.
func (s *Snapshot) mergeOperators(count uint64, ops []structs.Operator, violations []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count, s.countKnown = count, true

	byIndex := make(map[uint64]int, len(s.operators))
	for i, o := range s.operators {
		byIndex[o.Index] = i
	}
	for _, o := range ops {
		if i, ok := byIndex[o.Index]; ok {
			s.operators[i] = o
			continue
		}
		byIndex[o.Index] = len(s.operators)
		s.operators = append(s.operators, o)
	}
	s.operators = sortOperators(s.operators)
	s.operatorViolations = violations
}

// replaceKeys stores the result of a key sync together with the new cursors.
func (s *Snapshot) replaceKeys(keys []structs.SigningKey, cursors map[uint64]uint64, dropUnlisted bool, violations []error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = keys
	if dropUnlisted {
		s.synced = make(map[uint64]uint64, len(cursors))
	}
	for op, c := range cursors {
		s.synced[op] = c
	}
	s.keyViolations = violations
}

func sortOperators(ops []structs.Operator) []structs.Operator {
	slices.SortStableFunc(ops, func(a, b structs.Operator) bool {
		return a.Index < b.Index
	})
	return ops
}

func sortKeys(keys []structs.SigningKey) []structs.SigningKey {
	slices.SortStableFunc(keys, func(a, b structs.SigningKey) bool {
		if a.OperatorIndex != b.OperatorIndex {
			return a.OperatorIndex < b.OperatorIndex
		}
		return a.Index < b.Index
	})
	return keys
}

func cloneKeys(keys []structs.SigningKey) []structs.SigningKey {
	if keys == nil {
		return nil
	}
	out := make([]structs.SigningKey, len(keys))
	for i, k := range keys {
		out[i] = cloneKey(k)
	}
	return out
}

func cloneKey(k structs.SigningKey) structs.SigningKey {
	k.Key = slices.Clone(k.Key)
	k.DepositSignature = slices.Clone(k.DepositSignature)
	return k
}
