package verify

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/flashbots/go-boost-utils/bls"
)

var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

const (
	PublicKeyLength = bls12381.SizeOfG1AffineCompressed
	SecretKeyLength = fr.Bytes
	SignatureLength = bls12381.SizeOfG2AffineCompressed
)

const (
	BackendGnark = "gnark"
	BackendBlst  = "blst"
)

type (
	PublicKey = bls12381.G1Affine
	Signature = bls12381.G2Affine
)

// Func checks a signature over a 32 byte signing root.
type Func func(msg [32]byte, sigBytes, pkBytes []byte) (bool, error)

var (
	_, _, g1One, _            = bls12381.Generators()
	ErrInvalidPubkeyLength    = errors.New("invalid public key length")
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	ErrUnknownBackend         = errors.New("unknown verification backend")
)

// Backend returns verification function by name. Empty name means gnark.
func Backend(name string) (Func, error) {
	switch name {
	case "", BackendGnark:
		return VerifySignatureBytes, nil
	case BackendBlst:
		return VerifySignatureBlst, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
}

func PublicKeyFromBytes(pkBytes []byte) (*PublicKey, error) {
	if len(pkBytes) != PublicKeyLength {
		return nil, ErrInvalidPubkeyLength
	}
	pk := new(PublicKey)
	err := pk.Unmarshal(pkBytes)
	return pk, err
}

func SignatureFromBytes(sigBytes []byte) (*Signature, error) {
	if len(sigBytes) != SignatureLength {
		return nil, ErrInvalidSignatureLength
	}
	sig := new(Signature)
	err := sig.Unmarshal(sigBytes)
	return sig, err
}

func VerifySignatureBytes(msg [32]byte, sigBytes, pkBytes []byte) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var isErr bool
			err, isErr = r.(error)
			if !isErr {
				err = fmt.Errorf("verify signature bytes panic: %v", r)
			}
		}
	}()

	pk, err := PublicKeyFromBytes(pkBytes)
	if err != nil {
		return false, err
	}
	if pk.IsInfinity() {
		return false, nil
	}
	sig, err := SignatureFromBytes(sigBytes)
	if err != nil {
		return false, err
	}
	return VerifySignature(sig, pk, msg[:])
}

func VerifySignature(sig *Signature, pk *PublicKey, msg []byte) (bool, error) {
	Q, err := bls12381.HashToG2(msg, dst)
	if err != nil {
		return false, err
	}
	var negP bls12381.G1Affine
	negP.Neg(&g1One)
	return bls12381.PairingCheck(
		[]bls12381.G1Affine{*pk, negP},
		[]bls12381.G2Affine{Q, *sig},
	)
}

// VerifySignatureBlst does the same check as VerifySignatureBytes on blst.
func VerifySignatureBlst(msg [32]byte, sigBytes, pkBytes []byte) (bool, error) {
	if len(pkBytes) != PublicKeyLength {
		return false, ErrInvalidPubkeyLength
	}
	if len(sigBytes) != SignatureLength {
		return false, ErrInvalidSignatureLength
	}
	pk, err := bls.PublicKeyFromBytes(pkBytes)
	if err != nil {
		return false, err
	}
	sig, err := bls.SignatureFromBytes(sigBytes)
	if err != nil {
		return false, err
	}
	return bls.VerifySignature(sig, pk, msg[:])
}
