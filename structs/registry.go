package structs

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Operator is a node operator as stored in the registry contract.
// Index is never read from the contract response, it is the position
// the operator was requested at.
type Operator struct {
	Index             uint64         `json:"index"`
	Active            bool           `json:"active"`
	Name              string         `json:"name"`
	RewardAddress     common.Address `json:"rewardAddress"`
	StakingLimit      uint64         `json:"stakingLimit"`
	StoppedValidators uint64         `json:"stoppedValidators"`
	TotalSigningKeys  uint64         `json:"totalSigningKeys"`
	UsedSigningKeys   uint64         `json:"usedSigningKeys"`
}

// Check reports an ErrInvariantViolation when the operator claims more used keys than it has.
func (o Operator) Check() error {
	if o.UsedSigningKeys > o.TotalSigningKeys {
		return fmt.Errorf("%w: operator %d used %d keys out of %d", ErrInvariantViolation, o.Index, o.UsedSigningKeys, o.TotalSigningKeys)
	}
	return nil
}

func (o Operator) Loggable() map[string]any {
	return map[string]any{
		"operator": o.Index,
		"name":     o.Name,
		"total":    o.TotalSigningKeys,
		"used":     o.UsedSigningKeys,
	}
}

// KeyRef is a position of a signing key in the registry.
type KeyRef struct {
	OperatorIndex uint64 `json:"operator_index"`
	Index         uint64 `json:"index"`
}

type SigningKey struct {
	OperatorIndex    uint64        `json:"operator_index"`
	Index            uint64        `json:"index"`
	Key              hexutil.Bytes `json:"key"`
	DepositSignature hexutil.Bytes `json:"depositSignature"`
	Used             bool          `json:"used"`
}

func (sk SigningKey) Ref() KeyRef {
	return KeyRef{OperatorIndex: sk.OperatorIndex, Index: sk.Index}
}

// Equal compares every field, including the position.
func (sk SigningKey) Equal(o SigningKey) bool {
	return sk.OperatorIndex == o.OperatorIndex &&
		sk.Index == o.Index &&
		sk.Used == o.Used &&
		bytes.Equal(sk.Key, o.Key) &&
		bytes.Equal(sk.DepositSignature, o.DepositSignature)
}

func (sk SigningKey) Loggable() map[string]any {
	return map[string]any{
		"operator": sk.OperatorIndex,
		"index":    sk.Index,
		"key":      sk.Key.String(),
		"used":     sk.Used,
	}
}

// DuplicatePair holds two keys sharing the same public key bytes.
type DuplicatePair [2]SigningKey

type InvalidKey struct {
	SigningKey
	Reason string `json:"reason"`
}
