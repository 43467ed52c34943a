//go:generate mockgen  -destination=./mocks/mocks.go -package=mocks github.com/blocknative/opkeys/monitor Syncer,Validator,Exporter
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/log"
	uberatomic "go.uber.org/atomic"

	"github.com/blocknative/opkeys/registry"
	"github.com/blocknative/opkeys/structs"
	"github.com/blocknative/opkeys/validators"
)

type Syncer interface {
	SyncOperators(ctx context.Context, snap *registry.Snapshot) ([]structs.Operator, error)
	SyncKeys(ctx context.Context, snap *registry.Snapshot) ([]structs.SigningKey, error)
}

type Validator interface {
	ValidateSnapshotKeys(ctx context.Context, src validators.KeySource) ([]structs.InvalidKey, error)
}

type Exporter interface {
	Store(ctx context.Context, r *Report) error
}

// Report is the outcome of a single sync cycle.
type Report struct {
	ID         uuid.UUID               `json:"id"`
	Started    time.Time               `json:"started"`
	Duration   time.Duration           `json:"duration"`
	Operators  int                     `json:"operators"`
	Keys       int                     `json:"keys"`
	UsedKeys   int                     `json:"usedKeys"`
	Invalid    []structs.InvalidKey    `json:"invalid"`
	Duplicates []structs.DuplicatePair `json:"duplicates"`
	Violations []string                `json:"violations"`
}

// Monitor owns a snapshot and runs sync cycles on it, one at a time.
type Monitor struct {
	snap *registry.Snapshot
	sync Syncer
	val  Validator
	exp  Exporter

	cycle sync.Mutex
	last  uberatomic.Pointer[Report]

	l log.Logger
	m MonitorMetrics
}

// NewMonitor creates a monitor, exp may be nil.
func NewMonitor(l log.Logger, snap *registry.Snapshot, s Syncer, v Validator, exp Exporter) *Monitor {
	m := &Monitor{
		snap: snap,
		sync: s,
		val:  v,
		exp:  exp,
		l:    l,
	}
	m.initMetrics()
	return m
}

func (m *Monitor) Snapshot() *registry.Snapshot {
	return m.snap
}

// LastReport returns the report of the last successful cycle, nil before the first one.
func (m *Monitor) LastReport() *Report {
	return m.last.Load()
}

// RunCycle syncs operators and keys, then validates keys and looks for duplicates.
func (m *Monitor) RunCycle(ctx context.Context) (r *Report, err error) {
	m.cycle.Lock()
	defer m.cycle.Unlock()

	mg := structs.NewMetricGroup(4)
	defer func() {
		mg.ObserveWithError(m.m.CycleTiming, err)
	}()

	r = &Report{ID: uuid.New(), Started: time.Now()}
	logger := m.l.WithField("cycle", r.ID.String())

	t := time.Now()
	ops, err := m.sync.SyncOperators(ctx, m.snap)
	mg.AppendSince(t, "operators")
	if err != nil {
		return nil, fmt.Errorf("sync operators: %w", err)
	}

	t = time.Now()
	keys, err := m.sync.SyncKeys(ctx, m.snap)
	mg.AppendSince(t, "keys")
	if err != nil {
		return nil, fmt.Errorf("sync keys: %w", err)
	}

	t = time.Now()
	r.Invalid, err = m.val.ValidateSnapshotKeys(ctx, m.snap)
	mg.AppendSince(t, "validate")
	if err != nil {
		return nil, fmt.Errorf("validate keys: %w", err)
	}

	t = time.Now()
	r.Duplicates = validators.FindSnapshotDuplicates(m.snap)
	mg.AppendSince(t, "duplicates")

	r.Operators, r.Keys = len(ops), len(keys)
	for _, k := range keys {
		if k.Used {
			r.UsedKeys++
		}
	}
	r.Violations = []string{}
	for _, v := range m.snap.Violations() {
		r.Violations = append(r.Violations, v.Error())
	}
	r.Duration = time.Since(r.Started)

	m.last.Store(r)
	m.m.Operators.Set(float64(r.Operators))
	m.m.Keys.WithLabelValues("total").Set(float64(r.Keys))
	m.m.Keys.WithLabelValues("used").Set(float64(r.UsedKeys))
	m.m.Keys.WithLabelValues("invalid").Set(float64(len(r.Invalid)))
	m.m.Keys.WithLabelValues("duplicated").Set(float64(len(r.Duplicates)))
	m.m.Violations.Set(float64(len(r.Violations)))

	for _, ik := range r.Invalid {
		logger.With(ik.SigningKey).WithField("reason", ik.Reason).Warn("invalid signing key")
	}
	for _, d := range r.Duplicates {
		logger.With(log.F{
			"key":   d[0].Key.String(),
			"first": d[0].Ref(),
			"other": d[1].Ref(),
		}).Warn("duplicated signing key")
	}

	if m.exp != nil {
		if err := m.exp.Store(ctx, r); err != nil {
			logger.WithError(err).Warn("failed to export report")
		}
	}

	logger.With(log.F{
		"operators":  r.Operators,
		"keys":       r.Keys,
		"invalid":    len(r.Invalid),
		"duplicates": len(r.Duplicates),
		"violations": len(r.Violations),
		"duration":   r.Duration.String(),
	}).Info("cycle finished")
	return r, nil
}

// Run starts a cycle right away and then every interval until ctx is done.
// A failed cycle is logged and retried on the next tick.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := m.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.l.WithError(err).Error("cycle failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
