//go:generate mockgen  -destination=./mocks/mocks.go -package=mocks github.com/blocknative/opkeys/validators Verifier,CredentialsSource
package validators

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flashbots/go-boost-utils/bls"
	"github.com/flashbots/go-boost-utils/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lthibault/log"

	"github.com/blocknative/opkeys/deposit"
	"github.com/blocknative/opkeys/structs"
	"github.com/blocknative/opkeys/verify"
)

type Verifier interface {
	VerifyBatch(ctx context.Context, queue uint, in []verify.Input) ([]error, error)
}

// CredentialsSource returns the current withdrawal credentials of the network.
type CredentialsSource interface {
	WithdrawalCredentials(ctx context.Context) ([]byte, error)
}

// KeySource is anything holding a key list, usually a registry snapshot.
type KeySource interface {
	Keys() []structs.SigningKey
}

type Config struct {
	// Historical are withdrawal credentials used before the current ones.
	// Used keys failing the current credentials are checked against them.
	Historical [][]byte
	CacheSize  int
	Queue      uint
}

var reasonInvalidSignature = structs.ErrInvalidSignature.Error()

type cacheKey struct {
	pubkey [structs.PublicKeyLength]byte
	sig    [structs.SignatureLength]byte
	wc     [structs.WithdrawalCredentialsLength]byte
}

// Validator checks deposit signatures of signing keys.
type Validator struct {
	wcs    CredentialsSource
	ver    Verifier
	domain types.Domain

	historical [][]byte
	queue      uint
	// verification outcome, empty string for a valid signature
	cache *lru.Cache[cacheKey, string]

	l log.Logger
	m ValidatorMetrics
}

func NewValidator(l log.Logger, domain types.Domain, wcs CredentialsSource, ver Verifier, cfg Config) (*Validator, error) {
	for _, h := range cfg.Historical {
		if len(h) != structs.WithdrawalCredentialsLength {
			return nil, fmt.Errorf("historical withdrawal credentials %x: invalid length %d", h, len(h))
		}
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 1
	}
	cache, err := lru.New[cacheKey, string](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	v := &Validator{
		wcs:        wcs,
		ver:        ver,
		domain:     domain,
		historical: cfg.Historical,
		queue:      cfg.Queue,
		cache:      cache,
		l:          l,
	}
	v.initMetrics()
	return v, nil
}

// ValidateSnapshotKeys validates every key of src.
func (v *Validator) ValidateSnapshotKeys(ctx context.Context, src KeySource) ([]structs.InvalidKey, error) {
	return v.ValidateKeys(ctx, src.Keys())
}

// ValidateKeys returns keys whose deposit signature does not verify, in input order.
// An empty list is validated without any remote read.
func (v *Validator) ValidateKeys(ctx context.Context, keys []structs.SigningKey) (invalid []structs.InvalidKey, err error) {
	invalid = []structs.InvalidKey{}
	if len(keys) == 0 {
		return invalid, nil
	}

	tStart := time.Now()
	defer func() {
		v.m.Timing.WithLabelValues(result(err)).Observe(time.Since(tStart).Seconds())
	}()

	wc, err := v.wcs.WithdrawalCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("withdrawal credentials: %w", err)
	}

	reasons := make([]string, len(keys))
	if len(wc) != structs.WithdrawalCredentialsLength {
		reason := fmt.Errorf("%w: withdrawal credentials length %d", structs.ErrMalformedKey, len(wc)).Error()
		for i := range reasons {
			reasons[i] = reason
		}
		return v.collect(keys, reasons), nil
	}

	candidates := make([]int, 0, len(keys))
	for i, k := range keys {
		if err := checkLayout(k); err != nil {
			reasons[i] = err.Error()
			continue
		}
		candidates = append(candidates, i)
	}

	failed, err := v.verify(ctx, keys, candidates, wc, reasons)
	if err != nil {
		return nil, err
	}

	// keys deposited before a credentials change
	for _, h := range v.historical {
		var used []int
		for _, i := range failed {
			if keys[i].Used {
				used = append(used, i)
			}
		}
		if len(used) == 0 {
			break
		}
		if failed, err = v.verify(ctx, keys, used, h, reasons); err != nil {
			return nil, err
		}
	}

	invalid = v.collect(keys, reasons)
	v.l.With(log.F{
		"keys":    len(keys),
		"invalid": len(invalid),
	}).Debug("keys validated")
	return invalid, nil
}

// verify checks keys at idx against wc, filling reasons and the cache.
// It returns the positions that failed with an invalid signature.
func (v *Validator) verify(ctx context.Context, keys []structs.SigningKey, idx []int, wc []byte, reasons []string) (failed []int, err error) {
	var (
		misses []int
		in     []verify.Input
	)
	for _, i := range idx {
		k := keys[i]
		if r, ok := v.cache.Get(newCacheKey(k, wc)); ok {
			v.m.CacheHits.WithLabelValues("hit").Inc()
			reasons[i] = r
			if r == reasonInvalidSignature {
				failed = append(failed, i)
			}
			continue
		}
		v.m.CacheHits.WithLabelValues("miss").Inc()

		root, err := deposit.SigningRoot(v.domain, k.Key, wc)
		if err != nil {
			return nil, err
		}
		misses = append(misses, i)
		in = append(in, verify.Input{Msg: root, Signature: k.DepositSignature, Pubkey: k.Key})
	}
	if len(in) == 0 {
		return failed, nil
	}

	res, err := v.ver.VerifyBatch(ctx, v.queue, in)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	if len(res) != len(in) {
		return nil, fmt.Errorf("verify: %d results for %d keys", len(res), len(in))
	}

	for j, i := range misses {
		var reason string
		switch {
		case res[j] == nil:
		case errors.Is(res[j], bls.ErrInvalidSignature):
			reason = reasonInvalidSignature
			failed = append(failed, i)
		default:
			reason = fmt.Errorf("%w: %s", structs.ErrMalformedKey, res[j]).Error()
		}
		reasons[i] = reason
		v.cache.Add(newCacheKey(keys[i], wc), reason)
	}
	return failed, nil
}

func (v *Validator) collect(keys []structs.SigningKey, reasons []string) []structs.InvalidKey {
	invalid := []structs.InvalidKey{}
	for i, r := range reasons {
		if r == "" {
			v.m.Keys.WithLabelValues("valid").Inc()
			continue
		}
		v.m.Keys.WithLabelValues("invalid").Inc()
		invalid = append(invalid, structs.InvalidKey{SigningKey: keys[i], Reason: r})
	}
	return invalid
}

func checkLayout(k structs.SigningKey) error {
	if len(k.Key) != structs.PublicKeyLength {
		return fmt.Errorf("%w: key length %d", structs.ErrMalformedKey, len(k.Key))
	}
	if len(k.DepositSignature) != structs.SignatureLength {
		return fmt.Errorf("%w: signature length %d", structs.ErrMalformedKey, len(k.DepositSignature))
	}
	return nil
}

func newCacheKey(k structs.SigningKey, wc []byte) (ck cacheKey) {
	copy(ck.pubkey[:], k.Key)
	copy(ck.sig[:], k.DepositSignature)
	copy(ck.wc[:], wc)
	return ck
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
