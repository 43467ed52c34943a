package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/lthibault/log"

	"github.com/blocknative/opkeys/structs"
)

type keyPlan struct {
	op       structs.Operator
	retained []structs.SigningKey
	from, to uint64
}

// SyncKeys brings the keys of every snapshot operator up to date.
// Operators are never removed by a sync, only keys of operators taken out
// with SetOperators are dropped.
func (s *Syncer) SyncKeys(ctx context.Context, snap *Snapshot) ([]structs.SigningKey, error) {
	return s.syncKeys(ctx, snap, snap.Operators(), true)
}

// SyncOperatorKeys brings the keys of the given operators up to date, using
// their TotalSigningKeys as the target. An empty list fetches nothing and
// returns the current keys.
func (s *Syncer) SyncOperatorKeys(ctx context.Context, snap *Snapshot, operators []structs.Operator) ([]structs.SigningKey, error) {
	if len(operators) == 0 {
		return snap.Keys(), nil
	}
	return s.syncKeys(ctx, snap, operators, false)
}

func (s *Syncer) syncKeys(ctx context.Context, snap *Snapshot, operators []structs.Operator, full bool) (keys []structs.SigningKey, err error) {
	timer := time.Now()
	defer func() {
		s.m.Timing.WithLabelValues("keys", result(err)).Observe(time.Since(timer).Seconds())
	}()

	current := make(map[uint64][]structs.SigningKey)
	for _, k := range snap.Keys() {
		current[k.OperatorIndex] = append(current[k.OperatorIndex], k)
	}

	var violations []error
	ops := sortOperators(dedupOperators(operators))
	plans := make(map[uint64]*keyPlan, len(ops))
	for _, op := range ops {
		if err := op.Check(); err != nil {
			// pruning still follows TotalSigningKeys
			s.m.Violations.WithLabelValues("usedAboveTotal").Inc()
			s.l.With(op).WithError(err).Warn("operator data inconsistent")
			violations = append(violations, err)
		}

		p := &keyPlan{op: op, to: op.TotalSigningKeys}
		if old, ok := snap.syncedCount(op.Index); ok {
			p.from = minUint64(old, op.TotalSigningKeys)
		}
		for _, k := range current[op.Index] {
			if k.Index >= p.from {
				continue
			}
			if !k.Used && k.Index < op.UsedSigningKeys {
				k.Used = true
			}
			p.retained = append(p.retained, k)
		}
		plans[op.Index] = p
	}

	refs := []structs.KeyRef{}
	for _, op := range ops {
		p := plans[op.Index]
		for i := p.from; i < p.to; i++ {
			refs = append(refs, structs.KeyRef{OperatorIndex: op.Index, Index: i})
		}
	}

	fetched, err := s.reg.SigningKeys(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("signing keys: %w", err)
	}
	if len(fetched) != len(refs) {
		return nil, fmt.Errorf("%w: %w: %d keys for %d refs", structs.ErrTransportFailure, ErrResultMismatch, len(fetched), len(refs))
	}

	for i := range fetched {
		k := fetched[i]
		k.OperatorIndex, k.Index = refs[i].OperatorIndex, refs[i].Index

		p := plans[k.OperatorIndex]
		if !k.Used && k.Index < p.op.UsedSigningKeys {
			err := fmt.Errorf("%w: key %d/%d reported unused below used count %d", structs.ErrInvariantViolation, k.OperatorIndex, k.Index, p.op.UsedSigningKeys)
			s.m.Violations.WithLabelValues("usedRegression").Inc()
			s.l.With(k).WithError(err).Warn("key used flag regressed")
			violations = append(violations, err)
			k.Used = true
		}
		p.retained = append(p.retained, k)
	}

	cursors := make(map[uint64]uint64, len(plans))
	for idx, p := range plans {
		keys = append(keys, p.retained...)
		cursors[idx] = p.to
	}
	var pruned int
	for idx, ks := range current {
		if p, ok := plans[idx]; ok {
			pruned += len(ks) - countBelow(ks, p.from)
			continue
		}
		if full {
			pruned += len(ks)
			continue
		}
		keys = append(keys, ks...)
	}
	keys = sortKeys(keys)

	snap.replaceKeys(keys, cursors, full, violations)

	s.m.Keys.WithLabelValues("fetched").Add(float64(len(fetched)))
	s.m.Keys.WithLabelValues("pruned").Add(float64(pruned))
	s.l.With(log.F{
		"operators": len(plans),
		"fetched":   len(fetched),
		"pruned":    pruned,
		"total":     len(keys),
	}).Debug("keys synced")

	return cloneKeys(keys), nil
}

// dedupOperators keeps the last entry of every operator index.
func dedupOperators(ops []structs.Operator) []structs.Operator {
	seen := make(map[uint64]int, len(ops))
	out := make([]structs.Operator, 0, len(ops))
	for _, o := range ops {
		if i, ok := seen[o.Index]; ok {
			out[i] = o
			continue
		}
		seen[o.Index] = len(out)
		out = append(out, o)
	}
	return out
}

func countBelow(keys []structs.SigningKey, bound uint64) (n int) {
	for _, k := range keys {
		if k.Index < bound {
			n++
		}
	}
	return n
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
