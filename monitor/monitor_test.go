package monitor_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/lthibault/log"
	"github.com/stretchr/testify/require"

	"github.com/blocknative/opkeys/monitor"
	"github.com/blocknative/opkeys/monitor/mocks"
	"github.com/blocknative/opkeys/registry"
	"github.com/blocknative/opkeys/structs"
	"github.com/blocknative/opkeys/validators"
)

var nullLog = log.New(log.WithWriter(io.Discard))

func fixture() ([]structs.Operator, []structs.SigningKey) {
	ops := []structs.Operator{
		{Index: 0, Name: "a", TotalSigningKeys: 2, UsedSigningKeys: 1},
		{Index: 1, Name: "b", TotalSigningKeys: 1},
	}
	keys := []structs.SigningKey{
		{OperatorIndex: 0, Index: 0, Key: []byte{0x01}, Used: true},
		{OperatorIndex: 0, Index: 1, Key: []byte{0x02}},
		{OperatorIndex: 1, Index: 0, Key: []byte{0x01}},
	}
	return ops, keys
}

func expectSync(s *mocks.MockSyncer) {
	ops, keys := fixture()
	s.EXPECT().SyncOperators(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *registry.Snapshot) ([]structs.Operator, error) {
			snap.SetOperators(ops)
			return ops, nil
		})
	s.EXPECT().SyncKeys(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap *registry.Snapshot) ([]structs.SigningKey, error) {
			snap.SetKeys(keys)
			return keys, nil
		})
}

func TestRunCycle(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := mocks.NewMockSyncer(ctrl)
	v := mocks.NewMockValidator(ctrl)
	exp := mocks.NewMockExporter(ctrl)

	_, keys := fixture()
	expectSync(s)
	v.EXPECT().ValidateSnapshotKeys(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, src validators.KeySource) ([]structs.InvalidKey, error) {
			require.Len(t, src.Keys(), 3)
			return []structs.InvalidKey{{SigningKey: keys[1], Reason: structs.ErrInvalidSignature.Error()}}, nil
		})
	exp.EXPECT().Store(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	m := monitor.NewMonitor(nullLog, registry.NewSnapshot(), s, v, exp)
	require.Nil(t, m.LastReport())

	r, err := m.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, r.Operators)
	require.Equal(t, 3, r.Keys)
	require.Equal(t, 1, r.UsedKeys)
	require.Len(t, r.Invalid, 1)
	require.Len(t, r.Duplicates, 1)
	require.EqualValues(t, 1, r.Duplicates[0][1].OperatorIndex)
	require.Empty(t, r.Violations)
	require.Same(t, r, m.LastReport())
	require.Len(t, m.Snapshot().Keys(), 3)
}

func TestRunCycleFailureKeepsReport(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	s := mocks.NewMockSyncer(ctrl)
	v := mocks.NewMockValidator(ctrl)

	expectSync(s)
	v.EXPECT().ValidateSnapshotKeys(gomock.Any(), gomock.Any()).Return([]structs.InvalidKey{}, nil)

	m := monitor.NewMonitor(nullLog, registry.NewSnapshot(), s, v, nil)
	first, err := m.RunCycle(context.Background())
	require.NoError(t, err)

	s.EXPECT().SyncOperators(gomock.Any(), gomock.Any()).Return(nil, structs.ErrTransportFailure)
	_, err = m.RunCycle(context.Background())
	require.ErrorIs(t, err, structs.ErrTransportFailure)
	require.Same(t, first, m.LastReport())
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	s := mocks.NewMockSyncer(ctrl)
	v := mocks.NewMockValidator(ctrl)
	exp := mocks.NewMockExporter(ctrl)

	// first cycle fails, second one succeeds and stops the loop
	s.EXPECT().SyncOperators(gomock.Any(), gomock.Any()).Return(nil, structs.ErrTransportFailure)
	expectSync(s)
	v.EXPECT().ValidateSnapshotKeys(gomock.Any(), gomock.Any()).Return([]structs.InvalidKey{}, nil)
	exp.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, *monitor.Report) error {
		cancel()
		return nil
	})

	m := monitor.NewMonitor(nullLog, registry.NewSnapshot(), s, v, exp)
	err := m.Run(ctx, time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, m.LastReport())
}
