//go:generate mockgen  -destination=./mocks/mocks.go -package=mocks github.com/blocknative/opkeys/client Client
package client

import (
	"context"

	"github.com/blocknative/opkeys/contract"
)

// Client is a single execution endpoint able to run batched contract reads.
type Client interface {
	CallBatch(ctx context.Context, calls []contract.Call) ([][]byte, error)
	ID() string
	Kind() string
}
