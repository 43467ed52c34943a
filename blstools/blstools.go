// Package blstools holds key helpers used by tooling and tests.
package blstools

import (
	"github.com/flashbots/go-boost-utils/bls"
	"github.com/flashbots/go-boost-utils/types"

	"github.com/blocknative/opkeys/deposit"
)

func GenerateNewKeypair() (sk *bls.SecretKey, pubKey types.PublicKey, err error) {
	sk, pk, err := bls.GenerateNewKeypair()
	if err != nil {
		return nil, pubKey, err
	}

	pkBytes := pk.Bytes()
	err = pubKey.FromSlice(pkBytes[:]) //nolint

	return sk, pubKey, err
}

func SecretKeyFromBytes(skBytes []byte) (sk *bls.SecretKey, pk types.PublicKey, err error) {
	sk, err = bls.SecretKeyFromBytes(skBytes[:])
	if err != nil {
		return nil, types.PublicKey{}, err
	}

	pubkey, err := bls.PublicKeyFromSecretKey(sk)
	if err != nil {
		return nil, types.PublicKey{}, err
	}

	pubkeyBytes := pubkey.Bytes()
	err = pk.FromSlice(pubkeyBytes[:]) //nolint

	return sk, pk, err
}

// SignDeposit signs a deposit of pk to wc the way a deposit CLI does.
func SignDeposit(sk *bls.SecretKey, pk types.PublicKey, wc []byte, domain types.Domain) (types.Signature, error) {
	msg, err := deposit.NewMessage(pk[:], wc)
	if err != nil {
		return types.Signature{}, err
	}
	return types.SignMessage(msg, domain, sk)
}
