package diag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/softuart/pkg/framework"
)

func TestEchoSnapshot(t *testing.T) {
	b := newTestBench(t)
	e := NewEcho(b.port)
	loop := fx.NewLoop()
	loop.AddController(fx.PrLvControl, e)

	loop.RunIteration(context.Background())
	require.True(t, b.port.TxIdle())

	b.receive("hello")
	loop.RunIteration(context.Background())
	require.Zero(t, b.port.Available())
	require.Equal(t, "hello", b.flush())
}

func TestConfigNewApp(t *testing.T) {
	b := newTestBench(t)
	conf := NewConfig()
	conf.Debug = false
	conf.StatsEvery = 7
	in, ok := conf.NewApp(b.port).(*Interpreter)
	require.True(t, ok)
	require.False(t, in.Debug)
	require.Equal(t, uint64(7), in.StatsEvery)

	conf.Snapshot = true
	_, ok = conf.NewApp(b.port).(*Echo)
	require.True(t, ok)
}
