package verify

import (
	"context"
	"fmt"

	"github.com/flashbots/go-boost-utils/bls"
	"github.com/lthibault/log"
	"github.com/prometheus/client_golang/prometheus"
)

// Input is a signature to check.
type Input struct {
	Msg       [32]byte
	Signature []byte
	Pubkey    []byte
}

type VerificationManager struct {
	VerifySyncCh chan Request
	VerifyAPICh  chan Request

	verify Func

	l log.Logger
	m ProcessManagerMetrics
}

func NewVerificationManager(l log.Logger, verifySize uint, f Func) *VerificationManager {
	if f == nil {
		f = VerifySignatureBytes
	}
	rm := &VerificationManager{
		l:      l,
		verify: f,

		VerifySyncCh: make(chan Request, verifySize),
		VerifyAPICh:  make(chan Request, verifySize),
	}
	rm.initMetrics()
	return rm
}

func (rm *VerificationManager) RunVerify(ctx context.Context, num uint) {
	for i := uint(0); i < num; i++ {
		go rm.VerifyParallel(ctx)
	}
}

func (rm *VerificationManager) GetVerifyChan(queue uint) chan Request {
	if queue == QueueAPI {
		return rm.VerifyAPICh
	}
	return rm.VerifySyncCh
}

// VerifyBatch checks all inputs on the worker pool and returns
// one result per input, in input order. The error is set only when
// the batch could not complete.
func (rm *VerificationManager) VerifyBatch(ctx context.Context, queue uint, in []Input) ([]error, error) {
	resp := NewBatchResp(len(in))
	ch := rm.GetVerifyChan(queue)

	go func() {
		for i, v := range in {
			if resp.IsClosed() {
				return
			}
			select {
			case ch <- Request{Msg: v.Msg, Signature: v.Signature, Pubkey: v.Pubkey, ID: i, Response: resp}:
			case <-ctx.Done():
				resp.Close(ctx.Err())
				return
			}
		}
	}()

	select {
	case <-resp.Done():
	case <-ctx.Done():
		resp.Close(ctx.Err())
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}
	return resp.Results(), nil
}

func (rm *VerificationManager) VerifyParallel(ctx context.Context) {
	rm.m.RunningWorkers.WithLabelValues("VerifyParallel").Inc()
	defer rm.m.RunningWorkers.WithLabelValues("VerifyParallel").Dec()

	timerSync := rm.m.VerifyTiming.WithLabelValues("sync")
	timerAPI := rm.m.VerifyTiming.WithLabelValues("api")

	// api requests are small, both queues are picked at random
	// so that a large sync batch does not starve them
	for {
		select {
		case v := <-rm.VerifySyncCh:
			rm.verifyCheck(timerSync, v)
		case v := <-rm.VerifyAPICh:
			rm.verifyCheck(timerAPI, v)
		case <-ctx.Done():
			return
		}
	}
}

func (rm *VerificationManager) verifyCheck(o prometheus.Observer, v Request) {
	if v.Response.IsClosed() {
		return
	}
	t := prometheus.NewTimer(o)
	defer t.ObserveDuration()

	v.Response.Send(rm.verifyUnit(v))
}

func (rm *VerificationManager) verifyUnit(v Request) (r Resp) {
	r.ID = v.ID
	defer func() {
		if p := recover(); p != nil {
			r.Err = fmt.Errorf("verify signature panic: %v", p)
		}
	}()

	ok, err := rm.verify(v.Msg, v.Signature, v.Pubkey)
	if err == nil && !ok {
		err = bls.ErrInvalidSignature
	}
	r.Err = err
	return r
}
