package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const nodeOperatorsRegistryABI = `[
	{"type":"function","name":"getNodeOperatorsCount","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getNodeOperator","stateMutability":"view",
	 "inputs":[{"name":"_id","type":"uint256"},{"name":"_fullInfo","type":"bool"}],
	 "outputs":[
		{"name":"active","type":"bool"},
		{"name":"name","type":"string"},
		{"name":"rewardAddress","type":"address"},
		{"name":"stakingLimit","type":"uint64"},
		{"name":"stoppedValidators","type":"uint64"},
		{"name":"totalSigningKeys","type":"uint64"},
		{"name":"usedSigningKeys","type":"uint64"}]},
	{"type":"function","name":"getSigningKey","stateMutability":"view",
	 "inputs":[{"name":"_operator_id","type":"uint256"},{"name":"_index","type":"uint256"}],
	 "outputs":[
		{"name":"key","type":"bytes"},
		{"name":"depositSignature","type":"bytes"},
		{"name":"used","type":"bool"}]}
]`

const lidoABI = `[
	{"type":"function","name":"getWithdrawalCredentials","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"bytes32"}]}
]`

const (
	MethodOperatorsCount        = "getNodeOperatorsCount"
	MethodOperator              = "getNodeOperator"
	MethodSigningKey            = "getSigningKey"
	MethodWithdrawalCredentials = "getWithdrawalCredentials"
)

var (
	NodeOperatorsRegistryABI = mustParse(nodeOperatorsRegistryABI)
	LidoABI                  = mustParse(lidoABI)
)

func mustParse(def string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return a
}
