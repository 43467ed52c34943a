package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/blocknative/opkeys/structs"
)

var ErrUnexpectedResult = errors.New("unexpected call result")

// NodeOperators reads operators and their signing keys from the NodeOperatorsRegistry contract.
type NodeOperators struct {
	address common.Address
	caller  BatchCaller
}

func NewNodeOperators(address common.Address, caller BatchCaller) *NodeOperators {
	return &NodeOperators{address: address, caller: caller}
}

func (no *NodeOperators) Address() common.Address {
	return no.address
}

func (no *NodeOperators) OperatorsCount(ctx context.Context) (uint64, error) {
	data, err := NodeOperatorsRegistryABI.Pack(MethodOperatorsCount)
	if err != nil {
		return 0, err
	}

	res, err := no.call(ctx, []Call{{Target: no.address, Method: MethodOperatorsCount, Data: data}})
	if err != nil {
		return 0, err
	}

	out, err := NodeOperatorsRegistryABI.Unpack(MethodOperatorsCount, res[0])
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", MethodOperatorsCount, err)
	}
	return toUint64(out[0])
}

// Operators fetches the metadata of all given operators in one batch.
// Every returned operator carries the index it was requested with.
func (no *NodeOperators) Operators(ctx context.Context, indexes []uint64) ([]structs.Operator, error) {
	if len(indexes) == 0 {
		return nil, nil
	}

	calls := make([]Call, len(indexes))
	for i, index := range indexes {
		data, err := NodeOperatorsRegistryABI.Pack(MethodOperator, new(big.Int).SetUint64(index), true)
		if err != nil {
			return nil, err
		}
		calls[i] = Call{Target: no.address, Method: MethodOperator, Data: data}
	}

	res, err := no.call(ctx, calls)
	if err != nil {
		return nil, err
	}

	operators := make([]structs.Operator, len(indexes))
	for i, raw := range res {
		op, err := decodeOperator(raw)
		if err != nil {
			return nil, fmt.Errorf("decode operator %d: %w", indexes[i], err)
		}
		op.Index = indexes[i]
		operators[i] = op
	}
	return operators, nil
}

// SigningKeys fetches all referenced keys in one batch.
// Positions are taken from refs, the contract response does not carry them.
func (no *NodeOperators) SigningKeys(ctx context.Context, refs []structs.KeyRef) ([]structs.SigningKey, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	calls := make([]Call, len(refs))
	for i, ref := range refs {
		data, err := NodeOperatorsRegistryABI.Pack(MethodSigningKey,
			new(big.Int).SetUint64(ref.OperatorIndex),
			new(big.Int).SetUint64(ref.Index))
		if err != nil {
			return nil, err
		}
		calls[i] = Call{Target: no.address, Method: MethodSigningKey, Data: data}
	}

	res, err := no.call(ctx, calls)
	if err != nil {
		return nil, err
	}

	keys := make([]structs.SigningKey, len(refs))
	for i, raw := range res {
		sk, err := decodeSigningKey(raw)
		if err != nil {
			return nil, fmt.Errorf("decode key %d/%d: %w", refs[i].OperatorIndex, refs[i].Index, err)
		}
		sk.OperatorIndex = refs[i].OperatorIndex
		sk.Index = refs[i].Index
		keys[i] = sk
	}
	return keys, nil
}

func (no *NodeOperators) call(ctx context.Context, calls []Call) ([][]byte, error) {
	return callBatch(ctx, no.caller, calls)
}

func callBatch(ctx context.Context, caller BatchCaller, calls []Call) ([][]byte, error) {
	res, err := caller.CallBatch(ctx, calls)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", structs.ErrTransportFailure, calls[0].Method, err)
	}
	if len(res) != len(calls) {
		return nil, fmt.Errorf("%w: %w: %d results for %d calls", structs.ErrTransportFailure, ErrUnexpectedResult, len(res), len(calls))
	}
	return res, nil
}

func decodeOperator(raw []byte) (op structs.Operator, err error) {
	out, err := NodeOperatorsRegistryABI.Unpack(MethodOperator, raw)
	if err != nil {
		return op, err
	}
	if len(out) != 7 {
		return op, ErrUnexpectedResult
	}

	var ok [7]bool
	op.Active, ok[0] = out[0].(bool)
	op.Name, ok[1] = out[1].(string)
	op.RewardAddress, ok[2] = out[2].(common.Address)
	op.StakingLimit, ok[3] = out[3].(uint64)
	op.StoppedValidators, ok[4] = out[4].(uint64)
	op.TotalSigningKeys, ok[5] = out[5].(uint64)
	op.UsedSigningKeys, ok[6] = out[6].(uint64)
	for _, o := range ok {
		if !o {
			return op, ErrUnexpectedResult
		}
	}
	return op, nil
}

func decodeSigningKey(raw []byte) (sk structs.SigningKey, err error) {
	out, err := NodeOperatorsRegistryABI.Unpack(MethodSigningKey, raw)
	if err != nil {
		return sk, err
	}
	if len(out) != 3 {
		return sk, ErrUnexpectedResult
	}

	key, ok1 := out[0].([]byte)
	sig, ok2 := out[1].([]byte)
	used, ok3 := out[2].(bool)
	if !ok1 || !ok2 || !ok3 {
		return sk, ErrUnexpectedResult
	}

	sk.Key = key
	sk.DepositSignature = sig
	sk.Used = used
	return sk, nil
}

func toUint64(v any) (uint64, error) {
	b, ok := v.(*big.Int)
	if !ok {
		return 0, ErrUnexpectedResult
	}
	u, overflow := uint256.FromBig(b)
	if overflow || !u.IsUint64() {
		return 0, fmt.Errorf("%w: %s does not fit uint64", ErrUnexpectedResult, b)
	}
	return u.Uint64(), nil
}
