package registry_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/lthibault/log"
	"github.com/stretchr/testify/require"

	"github.com/blocknative/opkeys/registry"
	"github.com/blocknative/opkeys/registry/mocks"
	"github.com/blocknative/opkeys/structs"
)

var nullLog = log.New(log.WithWriter(io.Discard))

func keyBytes(r structs.KeyRef) []byte {
	b := make([]byte, structs.PublicKeyLength)
	b[0], b[1] = byte(r.OperatorIndex), byte(r.Index)
	return b
}

// serveKeys answers with keys that carry a bogus position,
// the syncer has to stamp them from the request.
func serveKeys(used func(structs.KeyRef) bool, seen *[][]structs.KeyRef) func(context.Context, []structs.KeyRef) ([]structs.SigningKey, error) {
	return func(_ context.Context, refs []structs.KeyRef) ([]structs.SigningKey, error) {
		if seen != nil {
			*seen = append(*seen, refs)
		}
		out := make([]structs.SigningKey, len(refs))
		for i, r := range refs {
			out[i] = structs.SigningKey{
				OperatorIndex:    99,
				Index:            99,
				Key:              keyBytes(r),
				DepositSignature: make([]byte, structs.SignatureLength),
				Used:             used != nil && used(r),
			}
		}
		return out, nil
	}
}

func operator(index, total, used uint64) structs.Operator {
	return structs.Operator{
		Index:            index,
		Active:           true,
		Name:             fmt.Sprintf("operator-%d", index),
		TotalSigningKeys: total,
		UsedSigningKeys:  used,
	}
}

func perOperator(keys []structs.SigningKey) map[uint64]int {
	m := make(map[uint64]int)
	for _, k := range keys {
		m[k.OperatorIndex]++
	}
	return m
}

func TestSyncOperatorsEmptyRegistry(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(0), nil).Times(1)

	snap := registry.NewSnapshot()
	ops, err := registry.NewSyncer(nullLog, reg).SyncOperators(context.Background(), snap)
	require.NoError(t, err)
	require.Empty(t, ops)
	require.Empty(t, snap.Operators())

	count, known := snap.OperatorsCount()
	require.True(t, known)
	require.Zero(t, count)
}

func TestSyncOperatorsStampsIndex(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(2), nil)
	reg.EXPECT().Operators(gomock.Any(), []uint64{0, 1}).Return([]structs.Operator{
		{Index: 7, Name: "first", TotalSigningKeys: 2},
		{Index: 7, Name: "second", TotalSigningKeys: 3},
	}, nil)

	snap := registry.NewSnapshot()
	ops, err := registry.NewSyncer(nullLog, reg).SyncOperators(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	require.EqualValues(t, 0, ops[0].Index)
	require.Equal(t, "first", ops[0].Name)
	require.EqualValues(t, 1, ops[1].Index)
	require.Equal(t, "second", ops[1].Name)

	o, ok := snap.Operator(1)
	require.True(t, ok)
	require.Equal(t, "second", o.Name)
	require.Empty(t, snap.Violations())
}

func TestSyncOperatorsByIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	t.Run("empty", func(t *testing.T) {
		// no remote call expected
		ops, err := s.SyncOperatorsByIndex(ctx, snap, []uint64{})
		require.NoError(t, err)
		require.NotNil(t, ops)
		require.Empty(t, ops)
	})

	t.Run("count fetched first", func(t *testing.T) {
		reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(3), nil).Times(1)
		reg.EXPECT().Operators(gomock.Any(), []uint64{2, 0}).Return([]structs.Operator{
			operator(0, 5, 1), operator(0, 4, 4),
		}, nil)

		ops, err := s.SyncOperatorsByIndex(ctx, snap, []uint64{2, 0})
		require.NoError(t, err)
		require.EqualValues(t, 2, ops[0].Index)
		require.EqualValues(t, 0, ops[1].Index)

		all := snap.Operators()
		require.Len(t, all, 2)
		require.EqualValues(t, 0, all[0].Index)
		require.EqualValues(t, 4, all[0].TotalSigningKeys)
		require.EqualValues(t, 2, all[1].Index)
	})

	t.Run("merge keeps others", func(t *testing.T) {
		reg.EXPECT().Operators(gomock.Any(), []uint64{1}).Return([]structs.Operator{operator(0, 9, 0)}, nil)

		_, err := s.SyncOperatorsByIndex(ctx, snap, []uint64{1})
		require.NoError(t, err)

		all := snap.Operators()
		require.Len(t, all, 3)
		for i, o := range all {
			require.EqualValues(t, i, o.Index)
		}
		require.EqualValues(t, 9, all[1].TotalSigningKeys)
	})

	t.Run("out of range", func(t *testing.T) {
		// the count is refreshed once before giving up
		reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(3), nil).Times(1)

		_, err := s.SyncOperatorsByIndex(ctx, snap, []uint64{3})
		require.ErrorIs(t, err, registry.ErrOperatorOutOfRange)
	})
}

func TestSyncOperatorsByIndexStaleCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	gomock.InOrder(
		reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(2), nil),
		reg.EXPECT().Operators(gomock.Any(), []uint64{0, 1}).Return([]structs.Operator{
			operator(0, 1, 0), operator(0, 1, 0),
		}, nil),
		reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(3), nil),
		reg.EXPECT().Operators(gomock.Any(), []uint64{2}).Return([]structs.Operator{operator(0, 4, 0)}, nil),
	)

	_, err := s.SyncOperators(ctx, snap)
	require.NoError(t, err)

	ops, err := s.SyncOperatorsByIndex(ctx, snap, []uint64{2})
	require.NoError(t, err)
	require.Len(t, ops, 1)
	require.EqualValues(t, 2, ops[0].Index)

	count, known := snap.OperatorsCount()
	require.True(t, known)
	require.EqualValues(t, 3, count)
	require.Len(t, snap.Operators(), 3)
}

func TestSyncOperatorsCountShrinkKeepsOperator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	gomock.InOrder(
		reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(3), nil),
		reg.EXPECT().Operators(gomock.Any(), []uint64{0, 1, 2}).Return([]structs.Operator{
			operator(0, 1, 0), operator(0, 1, 0), operator(0, 2, 1),
		}, nil),
		reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(4)).DoAndReturn(serveKeys(func(r structs.KeyRef) bool {
			return r.OperatorIndex == 2 && r.Index == 0
		}, nil)),
		reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(2), nil),
		reg.EXPECT().Operators(gomock.Any(), []uint64{0, 1}).Return([]structs.Operator{
			operator(0, 1, 0), operator(0, 1, 0),
		}, nil),
		reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(0)).DoAndReturn(serveKeys(nil, nil)),
	)

	_, err := s.SyncOperators(ctx, snap)
	require.NoError(t, err)
	_, err = s.SyncKeys(ctx, snap)
	require.NoError(t, err)

	ops, err := s.SyncOperators(ctx, snap)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	o, ok := snap.Operator(2)
	require.True(t, ok)
	require.EqualValues(t, 2, o.TotalSigningKeys)

	v := snap.Violations()
	require.Len(t, v, 1)
	require.ErrorIs(t, v[0], structs.ErrInvariantViolation)

	keys, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, map[uint64]int{0: 1, 1: 1, 2: 2}, perOperator(keys))
	require.True(t, keys[2].Used)
}

func TestSyncOperatorsCountLimit(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	// no Operators call expected
	reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(registry.MaxOperators+1), nil)

	snap := registry.NewSnapshot()
	_, err := registry.NewSyncer(nullLog, reg).SyncOperators(context.Background(), snap)
	require.ErrorIs(t, err, structs.ErrInvariantViolation)

	_, known := snap.OperatorsCount()
	require.False(t, known)
	require.Empty(t, snap.Operators())
}

func TestSyncOperatorsTransportFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(1), nil).Times(2)
	reg.EXPECT().Operators(gomock.Any(), gomock.Any()).Return([]structs.Operator{operator(0, 1, 0)}, nil)
	_, err := s.SyncOperators(ctx, snap)
	require.NoError(t, err)

	errDown := fmt.Errorf("%w: connection refused", structs.ErrTransportFailure)
	reg.EXPECT().Operators(gomock.Any(), gomock.Any()).Return(nil, errDown)
	_, err = s.SyncOperators(ctx, snap)
	require.ErrorIs(t, err, structs.ErrTransportFailure)

	// untouched
	require.Equal(t, []structs.Operator{operator(0, 1, 0)}, snap.Operators())
}

func TestSyncOperatorsShortResult(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(2), nil)
	reg.EXPECT().Operators(gomock.Any(), gomock.Any()).Return([]structs.Operator{operator(0, 1, 0)}, nil)

	_, err := registry.NewSyncer(nullLog, reg).SyncOperators(context.Background(), registry.NewSnapshot())
	require.ErrorIs(t, err, structs.ErrTransportFailure)
	require.ErrorIs(t, err, registry.ErrResultMismatch)
}

func TestSyncOperatorsViolation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	reg.EXPECT().OperatorsCount(gomock.Any()).Return(uint64(2), nil)
	reg.EXPECT().Operators(gomock.Any(), gomock.Any()).Return([]structs.Operator{
		operator(0, 2, 3), operator(1, 2, 2),
	}, nil)

	snap := registry.NewSnapshot()
	ops, err := registry.NewSyncer(nullLog, reg).SyncOperators(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	v := snap.Violations()
	require.Len(t, v, 1)
	require.ErrorIs(t, v[0], structs.ErrInvariantViolation)
}

func TestSyncKeysIncremental(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()
	snap.SetOperators([]structs.Operator{operator(0, 4, 0), operator(1, 5, 0)})

	var seen [][]structs.KeyRef
	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Any()).DoAndReturn(serveKeys(nil, &seen)).Times(3)

	keys, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Len(t, keys, 9)
	require.Len(t, seen[0], 9)
	for _, k := range keys {
		require.Equal(t, keyBytes(k.Ref()), []byte(k.Key))
	}

	// A grows 4 -> 6, B shrinks 5 -> 4
	snap.SetOperators([]structs.Operator{operator(0, 6, 0), operator(1, 4, 0)})
	keys, err = s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, []structs.KeyRef{{OperatorIndex: 0, Index: 4}, {OperatorIndex: 0, Index: 5}}, seen[1])
	require.Equal(t, map[uint64]int{0: 6, 1: 4}, perOperator(keys))

	// order by operator then index
	for i := 1; i < len(keys); i++ {
		prev, cur := keys[i-1], keys[i]
		require.True(t, prev.OperatorIndex < cur.OperatorIndex ||
			(prev.OperatorIndex == cur.OperatorIndex && prev.Index < cur.Index))
	}
	for _, k := range keys {
		require.Equal(t, keyBytes(k.Ref()), []byte(k.Key))
	}

	// nothing changed, batch of size 0
	again, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Empty(t, seen[2])
	require.Equal(t, keys, again)
}

func TestSyncKeysPruneKeepsUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	used := func(r structs.KeyRef) bool { return r.Index < 2 }
	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(5)).DoAndReturn(serveKeys(used, nil))
	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(0)).DoAndReturn(serveKeys(used, nil))

	snap.SetOperators([]structs.Operator{operator(0, 5, 2)})
	_, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)

	snap.SetOperators([]structs.Operator{operator(0, 3, 2)})
	keys, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	require.True(t, keys[0].Used)
	require.True(t, keys[1].Used)
	require.False(t, keys[2].Used)
}

func TestSyncKeysUsedFlagWithoutRefetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	var seen [][]structs.KeyRef
	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Any()).DoAndReturn(serveKeys(nil, &seen)).Times(2)

	snap.SetOperators([]structs.Operator{operator(0, 2, 0), operator(1, 3, 0)})
	_, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)

	// operator 0 gets two more keys and one of the old ones is deposited,
	// operator 1 removes its last unused key
	snap.SetOperators([]structs.Operator{operator(0, 4, 1), operator(1, 2, 0)})
	keys, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Len(t, seen[1], 2)
	require.Len(t, keys, 6)

	op0 := snap.OperatorKeys(0)
	require.Len(t, op0, 4)
	require.True(t, op0[0].Used)
	for _, k := range op0[1:] {
		require.False(t, k.Used)
	}
	require.Len(t, snap.OperatorKeys(1), 2)
}

func TestSyncKeysUsedRegression(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	snap := registry.NewSnapshot()
	snap.SetOperators([]structs.Operator{operator(0, 2, 2)})

	// remote reports both keys unused while the operator has two used
	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(2)).DoAndReturn(serveKeys(nil, nil))

	keys, err := registry.NewSyncer(nullLog, reg).SyncKeys(context.Background(), snap)
	require.NoError(t, err)
	require.True(t, keys[0].Used)
	require.True(t, keys[1].Used)

	v := snap.Violations()
	require.Len(t, v, 2)
	for _, err := range v {
		require.ErrorIs(t, err, structs.ErrInvariantViolation)
	}
}

func TestSyncOperatorKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()
	snap.SetOperators([]structs.Operator{operator(0, 2, 0), operator(1, 3, 0)})

	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(5)).DoAndReturn(serveKeys(nil, nil))
	before, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		keys, err := s.SyncOperatorKeys(ctx, snap, []structs.Operator{})
		require.NoError(t, err)
		require.Equal(t, before, keys)
	})

	t.Run("subset keeps others", func(t *testing.T) {
		reg.EXPECT().SigningKeys(gomock.Any(), []structs.KeyRef{{OperatorIndex: 1, Index: 3}}).DoAndReturn(serveKeys(nil, nil))

		keys, err := s.SyncOperatorKeys(ctx, snap, []structs.Operator{operator(1, 4, 0)})
		require.NoError(t, err)
		require.Equal(t, map[uint64]int{0: 2, 1: 4}, perOperator(keys))
	})
}

func TestSyncKeysDropsRemovedOperators(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()

	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(3)).DoAndReturn(serveKeys(nil, nil))
	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(0)).DoAndReturn(serveKeys(nil, nil))

	snap.SetOperators([]structs.Operator{operator(0, 1, 0), operator(1, 2, 0)})
	_, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)

	snap.SetOperators([]structs.Operator{operator(0, 1, 0)})
	keys, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Equal(t, map[uint64]int{0: 1}, perOperator(keys))
}

func TestSyncKeysFailureKeepsCursor(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	s := registry.NewSyncer(nullLog, reg)
	snap := registry.NewSnapshot()
	snap.SetOperators([]structs.Operator{operator(0, 3, 0)})

	errDown := fmt.Errorf("%w: timeout", structs.ErrTransportFailure)
	gomock.InOrder(
		reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(3)).Return(nil, errDown),
		reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(3)).DoAndReturn(serveKeys(nil, nil)),
	)

	_, err := s.SyncKeys(ctx, snap)
	require.True(t, errors.Is(err, structs.ErrTransportFailure))
	require.Empty(t, snap.Keys())

	keys, err := s.SyncKeys(ctx, snap)
	require.NoError(t, err)
	require.Len(t, keys, 3)
}

func TestSetKeysMarksSynced(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	reg := mocks.NewMockRegistry(ctrl)
	snap := registry.NewSnapshot()
	snap.SetOperators([]structs.Operator{operator(0, 2, 0)})
	snap.SetKeys([]structs.SigningKey{
		{OperatorIndex: 0, Index: 1, Key: keyBytes(structs.KeyRef{Index: 1})},
		{OperatorIndex: 0, Index: 0, Key: keyBytes(structs.KeyRef{})},
	})

	require.EqualValues(t, 0, snap.Keys()[0].Index)

	reg.EXPECT().SigningKeys(gomock.Any(), gomock.Len(0)).DoAndReturn(serveKeys(nil, nil))
	keys, err := registry.NewSyncer(nullLog, reg).SyncKeys(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, keys, 2)
}
