package verify

import (
	"sync"
	"sync/atomic"
)

const (
	QueueSync = iota
	QueueAPI
)

// Request is a single signature check passed to the worker pool.
// The sender waits on Response for the whole batch.
type Request struct {
	Signature []byte
	Pubkey    []byte
	Msg       [32]byte
	// position of the request in the batch
	ID       int
	Response *BatchResp
}

type Resp struct {
	ID  int
	Err error
}

// BatchResp gathers results of a batch. Unlike a failing fast response
// every request gets its own outcome.
type BatchResp struct {
	results []error
	left    int

	rLock    sync.Mutex
	isClosed int32
	err      error

	done chan struct{}
}

func NewBatchResp(numAll int) (s *BatchResp) {
	s = &BatchResp{
		results: make([]error, numAll),
		left:    numAll,
		done:    make(chan struct{}),
	}
	if numAll == 0 {
		s.close()
	}
	return s
}

func (s *BatchResp) Done() <-chan struct{} {
	return s.done
}

func (s *BatchResp) IsClosed() bool {
	return atomic.LoadInt32(&(s.isClosed)) != 0
}

func (s *BatchResp) Send(r Resp) {
	s.rLock.Lock()
	defer s.rLock.Unlock()

	if s.IsClosed() || r.ID < 0 || r.ID >= len(s.results) {
		return
	}

	s.results[r.ID] = r.Err
	s.left--
	if s.left == 0 {
		s.close()
	}
}

// Results returns per request errors, nil meaning valid signature.
func (s *BatchResp) Results() []error {
	s.rLock.Lock()
	defer s.rLock.Unlock()
	return s.results
}

func (s *BatchResp) Error() error {
	s.rLock.Lock()
	defer s.rLock.Unlock()
	return s.err
}

// Close aborts the batch, pending requests are skipped by workers.
func (s *BatchResp) Close(err error) {
	s.rLock.Lock()
	defer s.rLock.Unlock()
	if s.IsClosed() {
		return
	}
	s.err = err
	s.close()
}

func (s *BatchResp) close() {
	if atomic.CompareAndSwapInt32(&(s.isClosed), 0, 1) {
		close(s.done)
	}
}
