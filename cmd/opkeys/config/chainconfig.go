package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	GenesisForkVersionMainnet = "0x00000000"
	GenesisForkVersionGoerli  = "0x00001020"
	GenesisForkVersionHolesky = "0x01017000"

	LidoAddressMainnet = "0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"
	LidoAddressGoerli  = "0x1643E812aE58766192Cf7D2Cf9567dF2C37e9B7F"
	LidoAddressHolesky = "0x3F1c547b21f65e10480dE3ad8E19fAAC46C95034"

	NodeOperatorsAddressMainnet = "0x55032650b14df07b85bF18A3a3eC8E0Af2e028d5"
	NodeOperatorsAddressGoerli  = "0x9D4AF1Ee19Dad8857db3a45B0374c81c8A1C6320"
	NodeOperatorsAddressHolesky = "0x595F64Ddc3856a3b5Ff4f4CC1d1fb4B46cFd2bAC"

	// credentials of the pre-withdrawals deposit contract setup
	HistoricalCredentialsMainnet = "0x009690e5d4472c7c0dbdf490425d89862535d2a52fb686333f3a0a9ff5d2125e"
)

var ErrUnknownNetwork = errors.New("unknown network")

type Network struct {
	GenesisForkVersion    string   `json:"GenesisForkVersion"`
	LidoAddress           string   `json:"LidoAddress"`
	NodeOperatorsAddress  string   `json:"NodeOperatorsAddress"`
	HistoricalCredentials []string `json:"HistoricalCredentials"`
}

// ChainConfig holds network constants needed to read and validate the registry.
type ChainConfig struct {
	Name                  string
	GenesisForkVersion    string
	LidoAddress           string
	NodeOperatorsAddress  string
	HistoricalCredentials []string
}

func NewChainConfig() *ChainConfig {
	return &ChainConfig{}
}

// LoadNetwork applies a known preset, unknown names leave the config untouched.
func (c *ChainConfig) LoadNetwork(network string) {
	switch network {
	case "main", "mainnet":
		c.set(network, Network{
			GenesisForkVersion:    GenesisForkVersionMainnet,
			LidoAddress:           LidoAddressMainnet,
			NodeOperatorsAddress:  NodeOperatorsAddressMainnet,
			HistoricalCredentials: []string{HistoricalCredentialsMainnet},
		})
	case "goerli":
		c.set(network, Network{
			GenesisForkVersion:   GenesisForkVersionGoerli,
			LidoAddress:          LidoAddressGoerli,
			NodeOperatorsAddress: NodeOperatorsAddressGoerli,
		})
	case "holesky":
		c.set(network, Network{
			GenesisForkVersion:   GenesisForkVersionHolesky,
			LidoAddress:          LidoAddressHolesky,
			NodeOperatorsAddress: NodeOperatorsAddressHolesky,
		})
	}
}

// ReadNetworkConfig loads the network from datadir/networks.json.
func (c *ChainConfig) ReadNetworkConfig(datadir, network string) error {
	path := filepath.Join(datadir, "networks.json")
	jsonFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnknownNetwork, network, err.Error())
	}
	defer jsonFile.Close()

	var networks map[string]Network
	if err := json.NewDecoder(jsonFile).Decode(&networks); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	n, ok := networks[network]
	if !ok {
		return fmt.Errorf("%w: %s not found in %s", ErrUnknownNetwork, network, path)
	}
	c.set(network, n)
	return nil
}

func (c *ChainConfig) set(name string, n Network) {
	c.Name = name
	c.GenesisForkVersion = n.GenesisForkVersion
	c.LidoAddress = n.LidoAddress
	c.NodeOperatorsAddress = n.NodeOperatorsAddress
	c.HistoricalCredentials = n.HistoricalCredentials
}

func (c *ChainConfig) Loaded() bool {
	return c.GenesisForkVersion != ""
}

// Addresses returns the Lido and NodeOperatorsRegistry addresses.
func (c *ChainConfig) Addresses() (lido, nor common.Address, err error) {
	if !common.IsHexAddress(c.LidoAddress) {
		return lido, nor, fmt.Errorf("invalid lido address %q", c.LidoAddress)
	}
	if !common.IsHexAddress(c.NodeOperatorsAddress) {
		return lido, nor, fmt.Errorf("invalid node operators address %q", c.NodeOperatorsAddress)
	}
	return common.HexToAddress(c.LidoAddress), common.HexToAddress(c.NodeOperatorsAddress), nil
}

func (c *ChainConfig) Historical() ([][]byte, error) {
	out := make([][]byte, 0, len(c.HistoricalCredentials))
	for _, h := range c.HistoricalCredentials {
		b, err := hexutil.Decode(h)
		if err != nil {
			return nil, fmt.Errorf("historical credentials %q: %w", h, err)
		}
		out = append(out, b)
	}
	return out, nil
}
