package fallback

import (
	"context"
	"errors"

	"github.com/lthibault/log"
	uberatomic "go.uber.org/atomic"

	"github.com/blocknative/opkeys/client"
	"github.com/blocknative/opkeys/contract"
)

// Fallback runs batches on the first endpoint that answers.
// Only connection failures move it to the next endpoint, any other
// error is returned as is.
type Fallback struct {
	clients []client.Client
	best    uberatomic.Int64

	m Metrics
	l log.Logger
}

func NewFallback(l log.Logger) *Fallback {
	f := &Fallback{l: l}
	f.initMetrics()
	return f
}

func (f *Fallback) IsSet() bool {
	return len(f.clients) > 0
}

func (f *Fallback) AddClient(cli client.Client) {
	for _, c := range f.clients {
		if c.ID() == cli.ID() {
			return
		}
	}
	f.clients = append(f.clients, cli)
}

func (f *Fallback) CallBatch(ctx context.Context, calls []contract.Call) (res [][]byte, err error) {
	if len(f.clients) == 0 {
		f.m.ServedFrom.WithLabelValues("none", "", "error").Inc()
		return nil, client.ErrNotFound
	}

	start := int(f.best.Load())
	var keepTrying bool
	for i := 0; i < len(f.clients); i++ {
		idx := (start + i) % len(f.clients)
		res, err, keepTrying = f.callBatch(ctx, f.clients[idx], calls)
		if err == nil {
			f.best.Store(int64(idx))
			return res, nil
		}
		if !keepTrying {
			return nil, err
		}
	}

	f.m.ServedFrom.WithLabelValues("all", "all", "fatal").Inc()
	return nil, err
}

func (f *Fallback) callBatch(ctx context.Context, c client.Client, calls []contract.Call) (res [][]byte, err error, keepTrying bool) {
	if ctx.Err() != nil {
		f.m.ServedFrom.WithLabelValues(c.Kind(), c.ID(), "ctx").Inc()
		return nil, ctx.Err(), false
	}

	res, err = c.CallBatch(ctx, calls)
	if err == nil {
		f.m.ServedFrom.WithLabelValues(c.Kind(), c.ID(), "ok").Inc()
		return res, nil, false
	}

	if !(errors.Is(err, client.ErrNotFound) || errors.Is(err, client.ErrConnectionFailure)) {
		f.m.ServedFrom.WithLabelValues(c.Kind(), c.ID(), "error").Inc()
		return nil, err, false
	}

	f.l.With(log.F{"node": c.ID()}).WithError(err).Warn("batch call fallback")
	f.m.ServedFrom.WithLabelValues(c.Kind(), c.ID(), "fallback").Inc()
	return nil, err, true
}
