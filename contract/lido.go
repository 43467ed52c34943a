package contract

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Lido reads network level values from the Lido contract.
type Lido struct {
	address common.Address
	caller  BatchCaller
}

func NewLido(address common.Address, caller BatchCaller) *Lido {
	return &Lido{address: address, caller: caller}
}

func (l *Lido) WithdrawalCredentials(ctx context.Context) ([]byte, error) {
	data, err := LidoABI.Pack(MethodWithdrawalCredentials)
	if err != nil {
		return nil, err
	}

	res, err := callBatch(ctx, l.caller, []Call{{Target: l.address, Method: MethodWithdrawalCredentials, Data: data}})
	if err != nil {
		return nil, err
	}

	out, err := LidoABI.Unpack(MethodWithdrawalCredentials, res[0])
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", MethodWithdrawalCredentials, err)
	}
	wc, ok := out[0].([32]byte)
	if !ok {
		return nil, ErrUnexpectedResult
	}
	return wc[:], nil
}
