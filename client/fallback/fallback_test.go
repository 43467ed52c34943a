package fallback_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/lthibault/log"
	"github.com/stretchr/testify/require"

	"github.com/blocknative/opkeys/client"
	"github.com/blocknative/opkeys/client/fallback"
	"github.com/blocknative/opkeys/client/mocks"
	"github.com/blocknative/opkeys/contract"
)

var nullLog = log.New(log.WithWriter(io.Discard))

func newClient(ctrl *gomock.Controller, id string) *mocks.MockClient {
	c := mocks.NewMockClient(ctrl)
	c.EXPECT().ID().Return(id).AnyTimes()
	c.EXPECT().Kind().Return("rpc").AnyTimes()
	return c
}

func TestFallbackEmpty(t *testing.T) {
	t.Parallel()

	f := fallback.NewFallback(nullLog)
	require.False(t, f.IsSet())

	_, err := f.CallBatch(context.Background(), []contract.Call{{}})
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestFallbackOnConnectionFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	down := newClient(ctrl, "down")
	up := newClient(ctrl, "up")

	f := fallback.NewFallback(nullLog)
	f.AddClient(down)
	f.AddClient(up)
	f.AddClient(up)

	want := [][]byte{{0x01}}
	down.EXPECT().CallBatch(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: refused", client.ErrConnectionFailure)).Times(1)
	up.EXPECT().CallBatch(gomock.Any(), gomock.Any()).Return(want, nil).Times(2)

	res, err := f.CallBatch(context.Background(), []contract.Call{{}})
	require.NoError(t, err)
	require.Equal(t, want, res)

	// last good endpoint is tried first
	res, err = f.CallBatch(context.Background(), []contract.Call{{}})
	require.NoError(t, err)
	require.Equal(t, want, res)
}

func TestFallbackStopsOnOtherErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	first := newClient(ctrl, "first")
	second := newClient(ctrl, "second")

	f := fallback.NewFallback(nullLog)
	f.AddClient(first)
	f.AddClient(second)

	errReverted := errors.New("execution reverted")
	first.EXPECT().CallBatch(gomock.Any(), gomock.Any()).Return(nil, errReverted).Times(1)

	_, err := f.CallBatch(context.Background(), []contract.Call{{}})
	require.ErrorIs(t, err, errReverted)
}

func TestFallbackAllDown(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	a := newClient(ctrl, "a")
	b := newClient(ctrl, "b")

	f := fallback.NewFallback(nullLog)
	f.AddClient(a)
	f.AddClient(b)

	a.EXPECT().CallBatch(gomock.Any(), gomock.Any()).Return(nil, client.ErrConnectionFailure).Times(1)
	b.EXPECT().CallBatch(gomock.Any(), gomock.Any()).Return(nil, client.ErrConnectionFailure).Times(1)

	_, err := f.CallBatch(context.Background(), []contract.Call{{}})
	require.ErrorIs(t, err, client.ErrConnectionFailure)
}
