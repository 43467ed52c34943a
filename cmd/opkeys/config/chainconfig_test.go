package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestLoadNetwork(t *testing.T) {
	t.Parallel()

	c := NewChainConfig()
	c.LoadNetwork("unknown")
	require.False(t, c.Loaded())

	c.LoadNetwork("mainnet")
	require.True(t, c.Loaded())
	require.Equal(t, GenesisForkVersionMainnet, c.GenesisForkVersion)

	lido, nor, err := c.Addresses()
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(LidoAddressMainnet), lido)
	require.Equal(t, common.HexToAddress(NodeOperatorsAddressMainnet), nor)

	h, err := c.Historical()
	require.NoError(t, err)
	require.Len(t, h, 1)
	require.Len(t, h[0], 32)
}

func TestReadNetworkConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "networks.json"), []byte(`{
		"devnet": {
			"GenesisForkVersion": "0x10000038",
			"LidoAddress": "0x0000000000000000000000000000000000000001",
			"NodeOperatorsAddress": "0x0000000000000000000000000000000000000002",
			"HistoricalCredentials": ["0x01"]
		}
	}`), 0o600))

	c := NewChainConfig()
	require.NoError(t, c.ReadNetworkConfig(dir, "devnet"))
	require.Equal(t, "0x10000038", c.GenesisForkVersion)

	_, nor, err := c.Addresses()
	require.NoError(t, err)
	require.Equal(t, "0x0000000000000000000000000000000000000002", nor.Hex())

	require.ErrorIs(t, c.ReadNetworkConfig(dir, "other"), ErrUnknownNetwork)
	require.ErrorIs(t, NewChainConfig().ReadNetworkConfig(t.TempDir(), "devnet"), ErrUnknownNetwork)

	c.LidoAddress = "nope"
	_, _, err = c.Addresses()
	require.Error(t, err)
}
