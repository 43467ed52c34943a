package deposit_test

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/blocknative/opkeys/blstools"
	"github.com/blocknative/opkeys/deposit"
	"github.com/blocknative/opkeys/verify"
)

var wc = common.FromHex("0x010000000000000000000000b9d7934878b5fb9610b3fe8a5e441e8fad7e293f")

func TestMessageHashTreeRoot(t *testing.T) {
	t.Parallel()

	_, pk, err := blstools.GenerateNewKeypair()
	require.NoError(t, err)

	m, err := deposit.NewMessage(pk[:], wc)
	require.NoError(t, err)
	require.EqualValues(t, 32_000_000_000, m.Amount)

	got, err := m.HashTreeRoot()
	require.NoError(t, err)

	ref := phase0.DepositMessage{WithdrawalCredentials: wc, Amount: phase0.Gwei(m.Amount)}
	copy(ref.PublicKey[:], pk[:])
	want, err := ref.HashTreeRoot()
	require.NoError(t, err)

	require.Equal(t, want, got)
}

func TestNewMessageLengths(t *testing.T) {
	t.Parallel()

	_, err := deposit.NewMessage(make([]byte, 47), wc)
	require.ErrorIs(t, err, deposit.ErrInvalidLength)

	_, err = deposit.NewMessage(make([]byte, 48), wc[:31])
	require.ErrorIs(t, err, deposit.ErrInvalidLength)
}

func TestComputeDomain(t *testing.T) {
	t.Parallel()

	d, err := deposit.ComputeDomain("0x00000000")
	require.NoError(t, err)
	// mainnet deposit domain
	require.Equal(t,
		"0x03000000f5a5fd42d16a20302798ef6ed309979b43003d2320d9f0e8ea9831a9",
		hexutil.Encode(d[:]))

	_, err = deposit.ComputeDomain("0x0000")
	require.ErrorIs(t, err, deposit.ErrInvalidForkVersion)

	_, err = deposit.ComputeDomain("zz")
	require.ErrorIs(t, err, deposit.ErrInvalidForkVersion)
}

func TestSigningRootMatchesSigningData(t *testing.T) {
	t.Parallel()

	_, pk, err := blstools.GenerateNewKeypair()
	require.NoError(t, err)
	domain, err := deposit.ComputeDomain("0x00001020")
	require.NoError(t, err)

	root, err := deposit.SigningRoot(domain, pk[:], wc)
	require.NoError(t, err)

	m, err := deposit.NewMessage(pk[:], wc)
	require.NoError(t, err)
	objRoot, err := m.HashTreeRoot()
	require.NoError(t, err)

	sd := phase0.SigningData{ObjectRoot: objRoot}
	copy(sd.Domain[:], domain[:])
	want, err := sd.HashTreeRoot()
	require.NoError(t, err)
	require.Equal(t, want, root)
}

func TestSignedDepositVerifies(t *testing.T) {
	t.Parallel()

	sk, pk, err := blstools.GenerateNewKeypair()
	require.NoError(t, err)
	domain, err := deposit.ComputeDomain("0x00000000")
	require.NoError(t, err)

	sig, err := blstools.SignDeposit(sk, pk, wc, domain)
	require.NoError(t, err)

	root, err := deposit.SigningRoot(domain, pk[:], wc)
	require.NoError(t, err)

	for _, backend := range []string{verify.BackendGnark, verify.BackendBlst} {
		f, err := verify.Backend(backend)
		require.NoError(t, err)
		ok, err := f(root, sig[:], pk[:])
		require.NoError(t, err)
		require.True(t, ok, backend)
	}

	// other network, same keys
	other, err := deposit.ComputeDomain("0x00001020")
	require.NoError(t, err)
	root, err = deposit.SigningRoot(other, pk[:], wc)
	require.NoError(t, err)
	ok, err := verify.VerifySignatureBytes(root, sig[:], pk[:])
	require.NoError(t, err)
	require.False(t, ok)
}
