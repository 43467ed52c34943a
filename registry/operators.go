package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/lthibault/log"

	"github.com/blocknative/opkeys/structs"
)

// Syncer reconciles a Snapshot with the remote Registry.
type Syncer struct {
	reg Registry

	l log.Logger
	m SyncMetrics
}

func NewSyncer(l log.Logger, reg Registry) *Syncer {
	s := &Syncer{reg: reg, l: l}
	s.initMetrics()
	return s
}

// MaxOperators bounds the operators count accepted from the registry.
const MaxOperators = 1 << 16

// SyncOperators refreshes the operators count and every operator in [0, count)
// and returns the operator list of snap. Operators above a shrunk count are
// kept and reported as a violation.
func (s *Syncer) SyncOperators(ctx context.Context, snap *Snapshot) (ops []structs.Operator, err error) {
	timer := time.Now()
	defer func() {
		s.m.Timing.WithLabelValues("operators", result(err)).Observe(time.Since(timer).Seconds())
	}()

	count, err := s.fetchCount(ctx)
	if err != nil {
		return nil, err
	}

	indexes := make([]uint64, count)
	for i := range indexes {
		indexes[i] = uint64(i)
	}

	fetched, err := s.fetchOperators(ctx, indexes)
	if err != nil {
		return nil, err
	}

	violations := s.checkOperators(fetched)
	for _, o := range snap.Operators() {
		if o.Index >= count {
			err := fmt.Errorf("%w: operator %d kept above operators count %d", structs.ErrInvariantViolation, o.Index, count)
			s.m.Violations.WithLabelValues("operatorsCountShrunk").Inc()
			s.l.With(o).WithError(err).Warn("operators count shrunk")
			violations = append(violations, err)
		}
	}

	snap.mergeOperators(count, fetched, violations)
	s.l.With(log.F{
		"count": count,
	}).Debug("operators synced")
	return snap.Operators(), nil
}

// SyncOperatorsByIndex refreshes the given operators only, other operators of snap
// are kept. An empty list fetches nothing. The count is refetched when it was never
// fetched or when an index is beyond the known count.
func (s *Syncer) SyncOperatorsByIndex(ctx context.Context, snap *Snapshot, indexes []uint64) (ops []structs.Operator, err error) {
	if len(indexes) == 0 {
		return []structs.Operator{}, nil
	}

	timer := time.Now()
	defer func() {
		s.m.Timing.WithLabelValues("operatorsByIndex", result(err)).Observe(time.Since(timer).Seconds())
	}()

	count, known := snap.OperatorsCount()
	if !known || maxUint64(indexes) >= count {
		if count, err = s.fetchCount(ctx); err != nil {
			return nil, err
		}
	}
	if i := maxUint64(indexes); i >= count {
		return nil, fmt.Errorf("%w: %d, count %d", ErrOperatorOutOfRange, i, count)
	}

	ops, err = s.fetchOperators(ctx, indexes)
	if err != nil {
		return nil, err
	}

	snap.mergeOperators(count, ops, s.checkOperators(ops))
	return ops, nil
}

func (s *Syncer) fetchCount(ctx context.Context) (uint64, error) {
	count, err := s.reg.OperatorsCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("operators count: %w", err)
	}
	if count > MaxOperators {
		s.m.Violations.WithLabelValues("operatorsCountLimit").Inc()
		return 0, fmt.Errorf("%w: operators count %d above limit %d", structs.ErrInvariantViolation, count, MaxOperators)
	}
	return count, nil
}

func (s *Syncer) fetchOperators(ctx context.Context, indexes []uint64) ([]structs.Operator, error) {
	if len(indexes) == 0 {
		return []structs.Operator{}, nil
	}

	ops, err := s.reg.Operators(ctx, indexes)
	if err != nil {
		return nil, fmt.Errorf("operators: %w", err)
	}
	if len(ops) != len(indexes) {
		return nil, fmt.Errorf("%w: %w: %d operators for %d indexes", structs.ErrTransportFailure, ErrResultMismatch, len(ops), len(indexes))
	}

	// payload carries no index
	for i := range ops {
		ops[i].Index = indexes[i]
	}
	return ops, nil
}

func (s *Syncer) checkOperators(ops []structs.Operator) (violations []error) {
	for _, o := range ops {
		if err := o.Check(); err != nil {
			s.m.Violations.WithLabelValues("usedAboveTotal").Inc()
			s.l.With(o).WithError(err).Warn("operator data inconsistent")
			violations = append(violations, err)
		}
	}
	return violations
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func maxUint64(vs []uint64) (m uint64) {
	for _, v := range vs {
		if v > m {
			m = v
		}
	}
	return m
}
