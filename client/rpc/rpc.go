package rpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/lthibault/log"
	"github.com/prometheus/client_golang/prometheus"
	uberatomic "go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/blocknative/opkeys/client"
	"github.com/blocknative/opkeys/contract"
	"github.com/blocknative/opkeys/structs"
)

const (
	DefaultMaxBatchSize = 100
	DefaultWorkers      = 4
	DefaultBlockTag     = "latest"
)

type RPCClient interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

type Config struct {
	// MaxBatchSize is the number of eth_calls sent in a single JSON-RPC batch.
	MaxBatchSize int
	// Workers limits how many batches of one CallBatch are in flight.
	Workers int
	// RateLimit is in batches per second, zero disables it.
	RateLimit int
	Burst     int
	BlockTag  string
	// Metrics are shared collectors, nil creates new ones.
	Metrics *ClientMetrics
}

// Client sends contract reads as JSON-RPC batches of eth_call.
type Client struct {
	rawurl string
	C      RPCClient

	maxBatchSize uberatomic.Int64
	workers      int
	blockTag     string
	lim          *rate.Limiter

	l log.Logger
	m *ClientMetrics
}

func NewClient(l log.Logger, rawurl string, cfg Config) *Client {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.BlockTag == "" {
		cfg.BlockTag = DefaultBlockTag
	}

	c := &Client{
		rawurl:   rawurl,
		workers:  cfg.Workers,
		blockTag: cfg.BlockTag,
		lim:      newLimiter(cfg.RateLimit, cfg.Burst),
		l:        l.WithField("endpoint", rawurl),
	}
	c.maxBatchSize.Store(int64(cfg.MaxBatchSize))
	if c.m = cfg.Metrics; c.m == nil {
		c.m = NewClientMetrics()
	}
	return c
}

func newLimiter(ratel, burst int) *rate.Limiter {
	if ratel <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(ratel), burst)
}

func (c *Client) Dial(ctx context.Context) (err error) {
	c.C, err = rpc.DialContext(ctx, c.rawurl)
	return err
}

func (c *Client) ID() string {
	return c.rawurl
}

func (c *Client) Kind() string {
	return "rpc"
}

// CallArgs is the transaction object of eth_call.
type CallArgs struct {
	To   string        `json:"to"`
	Data hexutil.Bytes `json:"data"`
}

// CallBatch splits calls into JSON-RPC batches of at most MaxBatchSize elements
// and sends them concurrently. Any failed batch or element fails the whole call.
func (c *Client) CallBatch(ctx context.Context, calls []contract.Call) ([][]byte, error) {
	if len(calls) == 0 {
		return [][]byte{}, nil
	}

	results := make([]hexutil.Bytes, len(calls))
	elems := make([]rpc.BatchElem, len(calls))
	for i, call := range calls {
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{CallArgs{To: call.Target.Hex(), Data: call.Data}, c.blockTag},
			Result: &results[i],
		}
	}

	size := int(c.maxBatchSize.Load())
	chunks := make([][]rpc.BatchElem, 0, len(elems)/size+1)
	for start := 0; start < len(elems); start += size {
		end := start + size
		if end > len(elems) {
			end = len(elems)
		}
		chunks = append(chunks, elems[start:end])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		sem      = make(chan struct{}, c.workers)
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for _, chunk := range chunks {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(chunk []rpc.BatchElem) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := c.send(ctx, chunk); err != nil {
				fail(err)
			}
		}(chunk)
	}
	wg.Wait()

	if firstErr == nil && ctx.Err() != nil {
		firstErr = fmt.Errorf("%w: %w", client.ErrConnectionFailure, ctx.Err())
	}
	if firstErr != nil {
		return nil, firstErr
	}

	out := make([][]byte, len(results))
	for i, r := range results {
		out[i] = r
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, chunk []rpc.BatchElem) error {
	if err := c.lim.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", client.ErrConnectionFailure, err)
	}

	t := prometheus.NewTimer(c.m.BatchTiming.WithLabelValues(c.rawurl))
	defer t.ObserveDuration()
	c.m.BatchSize.WithLabelValues(c.rawurl).Observe(float64(len(chunk)))

	if err := c.C.BatchCallContext(ctx, chunk); err != nil {
		c.m.BatchErrors.WithLabelValues(c.rawurl, "transport").Inc()
		return fmt.Errorf("%w: %w", client.ErrConnectionFailure, err)
	}

	for _, elem := range chunk {
		if elem.Error != nil {
			c.m.BatchErrors.WithLabelValues(c.rawurl, "element").Inc()
			return fmt.Errorf("batch element %s: %w", elem.Method, elem.Error)
		}
	}
	return nil
}

func (c *Client) OnConfigChange(change structs.OldNew) error {
	switch change.Name {
	case "MaxBatchSize":
		if i, ok := change.New.(int64); ok && i > 0 {
			c.maxBatchSize.Store(i)
		}
	case "RateLimit":
		if i, ok := change.New.(int64); ok {
			if i <= 0 {
				c.lim.SetLimit(rate.Inf)
			} else {
				c.lim.SetLimit(rate.Limit(i))
			}
		}
	case "Burst":
		if i, ok := change.New.(int64); ok {
			c.lim.SetBurst(int(i))
		}
	}
	c.l.With(log.F{
		"param": change.Name,
		"old":   change.Old,
		"new":   change.New,
	}).Debug("config changed")
	return nil
}
