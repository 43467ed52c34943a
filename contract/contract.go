//go:generate mockgen  -destination=./mocks/mocks.go -package=mocks github.com/blocknative/opkeys/contract BatchCaller
package contract

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Call is a single read-only contract call, with its input already ABI encoded.
type Call struct {
	Target common.Address
	Method string
	Data   []byte
}

// BatchCaller executes all calls in a single round trip.
// Results are returned in the order of calls, either all of them or none.
type BatchCaller interface {
	CallBatch(ctx context.Context, calls []Call) ([][]byte, error)
}
