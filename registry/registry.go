// Package registry mirrors the on-chain operator registry in memory and
// keeps it in sync with a minimal number of batch reads.
package registry

import (
	"context"
	"errors"

	"github.com/blocknative/opkeys/structs"
)

//go:generate mockgen  -destination=./mocks/mocks.go -package=mocks github.com/blocknative/opkeys/registry Registry

// Registry is the remote source of operators and keys.
// Each method is a single batch call, all-or-nothing.
type Registry interface {
	OperatorsCount(ctx context.Context) (uint64, error)
	Operators(ctx context.Context, indexes []uint64) ([]structs.Operator, error)
	SigningKeys(ctx context.Context, refs []structs.KeyRef) ([]structs.SigningKey, error)
}

var (
	ErrOperatorOutOfRange = errors.New("operator index out of range")
	ErrResultMismatch     = errors.New("result count mismatch")
)
