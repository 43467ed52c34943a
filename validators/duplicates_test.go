package validators_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocknative/opkeys/structs"
	"github.com/blocknative/opkeys/validators"
)

type keyList []structs.SigningKey

func (kl keyList) Keys() []structs.SigningKey { return kl }

func key(op, index uint64, b byte) structs.SigningKey {
	k := make([]byte, structs.PublicKeyLength)
	k[0] = b
	return structs.SigningKey{OperatorIndex: op, Index: index, Key: k}
}

func TestFindDuplicatedKeys(t *testing.T) {
	t.Parallel()

	keys := []structs.SigningKey{key(0, 0, 1), key(0, 1, 2), key(1, 0, 3), key(1, 1, 4), key(1, 2, 5)}

	t.Run("one repeat", func(t *testing.T) {
		in := append(append([]structs.SigningKey{}, keys...), keys[0])
		pairs := validators.FindDuplicatedKeys(in)
		require.Len(t, pairs, 1)
		require.Equal(t, pairs[0][0].Key, pairs[0][1].Key)
	})

	t.Run("no repeats", func(t *testing.T) {
		require.Empty(t, validators.FindDuplicatedKeys(keys))
	})

	t.Run("empty", func(t *testing.T) {
		pairs := validators.FindDuplicatedKeys([]structs.SigningKey{})
		require.NotNil(t, pairs)
		require.Empty(t, pairs)
		require.Empty(t, validators.FindSnapshotDuplicates(keyList(nil)))
	})

	t.Run("across operators", func(t *testing.T) {
		a, b, c := key(0, 0, 9), key(1, 3, 9), key(2, 7, 9)
		pairs := validators.FindDuplicatedKeys([]structs.SigningKey{key(3, 0, 1), a, key(3, 1, 2), b, c, key(3, 0, 1)})

		// groups in first appearance order, every pair of a group
		require.Equal(t, []structs.DuplicatePair{
			{key(3, 0, 1), key(3, 0, 1)},
			{a, b},
			{a, c},
			{b, c},
		}, pairs)
	})

	t.Run("snapshot", func(t *testing.T) {
		pairs := validators.FindSnapshotDuplicates(keyList{keys[2], keys[2]})
		require.Len(t, pairs, 1)
	})
}
