// Package deposit computes the message signed by a validator deposit.
package deposit

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ssz "github.com/ferranbt/fastssz"
	"github.com/flashbots/go-boost-utils/types"

	"github.com/blocknative/opkeys/structs"
)

// DomainTypeDeposit is DOMAIN_DEPOSIT of the beacon chain.
var DomainTypeDeposit = types.DomainType{0x03, 0x00, 0x00, 0x00}

var (
	ErrInvalidForkVersion = errors.New("invalid fork version")
	ErrInvalidLength      = errors.New("invalid length")
)

// Message is the DepositMessage container.
type Message struct {
	Pubkey                [48]byte `ssz-size:"48"`
	WithdrawalCredentials [32]byte `ssz-size:"32"`
	Amount                uint64
}

// NewMessage builds a deposit message of structs.DepositAmountGwei.
func NewMessage(pubkey, wc []byte) (*Message, error) {
	if len(pubkey) != structs.PublicKeyLength {
		return nil, fmt.Errorf("%w: pubkey %d", ErrInvalidLength, len(pubkey))
	}
	if len(wc) != structs.WithdrawalCredentialsLength {
		return nil, fmt.Errorf("%w: withdrawal credentials %d", ErrInvalidLength, len(wc))
	}
	m := &Message{Amount: structs.DepositAmountGwei}
	copy(m.Pubkey[:], pubkey)
	copy(m.WithdrawalCredentials[:], wc)
	return m, nil
}

// SizeSSZ returns the ssz encoded size in bytes for the Message object
func (m *Message) SizeSSZ() int {
	return 88
}

// MarshalSSZTo ssz marshals the Message object to a target array
func (m *Message) MarshalSSZTo(buf []byte) ([]byte, error) {
	buf = append(buf, m.Pubkey[:]...)
	buf = append(buf, m.WithdrawalCredentials[:]...)
	buf = ssz.MarshalUint64(buf, m.Amount)
	return buf, nil
}

// HashTreeRoot ssz hashes the Message object
func (m *Message) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(m)
}

// HashTreeRootWith ssz hashes the Message object with a hasher
func (m *Message) HashTreeRootWith(hh ssz.HashWalker) (err error) {
	indx := hh.Index()

	// Field (0) 'Pubkey'
	hh.PutBytes(m.Pubkey[:])

	// Field (1) 'WithdrawalCredentials'
	hh.PutBytes(m.WithdrawalCredentials[:])

	// Field (2) 'Amount'
	hh.PutUint64(m.Amount)

	hh.Merkleize(indx)
	return
}

// GetTree ssz hashes the Message object
func (m *Message) GetTree() (*ssz.Node, error) {
	return ssz.ProofTree(m)
}

// ComputeDomain returns the deposit domain for a genesis fork version.
// Deposits are valid across forks so the genesis validators root is zero.
func ComputeDomain(forkVersionHex string) (domain types.Domain, err error) {
	forkVersionBytes, err := hexutil.Decode(forkVersionHex)
	if err != nil || len(forkVersionBytes) != 4 {
		return domain, fmt.Errorf("%w: %q", ErrInvalidForkVersion, forkVersionHex)
	}
	var forkVersion [4]byte
	copy(forkVersion[:], forkVersionBytes)
	return types.ComputeDomain(DomainTypeDeposit, forkVersion, types.Root{}), nil
}

// SigningRoot returns the root a deposit signature of pubkey must cover.
func SigningRoot(domain types.Domain, pubkey, wc []byte) ([32]byte, error) {
	m, err := NewMessage(pubkey, wc)
	if err != nil {
		return [32]byte{}, err
	}
	return types.ComputeSigningRoot(m, domain)
}
