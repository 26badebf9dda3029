// Package bridge connects the far end of a simulated serial line to
// the outside world: a terminal, a TCP peer, a websocket, an MQTT
// broker or a real serial port.
package bridge

import (
	"context"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/softuart/pkg/framework"
)

// DefaultMaxPacket is the largest chunk read from the line at once.
const DefaultMaxPacket = 256

// Bridge pumps bytes both ways between Line and Transport. Bytes
// read from the line go out as one packet per read, each packet
// coming in is written to the line as is.
type Bridge struct {
	Line      io.ReadWriter
	Transport PacketReadWriter
	MaxPacket int
}

// New creates a Bridge.
func New(line io.ReadWriter, transport PacketReadWriter) *Bridge {
	return &Bridge{Line: line, Transport: transport, MaxPacket: DefaultMaxPacket}
}

// Name implements Named.
func (b *Bridge) Name() string {
	return "bridge"
}

// AddToLoop implements LoopAdder.
func (b *Bridge) AddToLoop(loop *fx.Loop) {
	if adder, ok := b.Transport.(fx.LoopAdder); ok {
		loop.Add(adder)
	} else if runnable, ok := b.Transport.(fx.Runnable); ok {
		loop.AddRunnable(runnable)
	}
	loop.AddRunnable(b)
}

// Run implements Runnable. It returns when either direction fails or
// ctx is done, closing the transport and the line.
func (b *Bridge) Run(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() { errCh <- b.uplink() }()
	go func() { errCh <- b.downlink() }()
	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errCh:
	}
	b.Close()
	if err == io.EOF {
		err = nil
	}
	return err
}

// Close implements io.Closer, closing the transport and the line.
func (b *Bridge) Close() error {
	var errs fx.AggregatedError
	for _, s := range []interface{}{b.Transport, b.Line} {
		if closer, ok := s.(io.Closer); ok {
			errs.Add(closer.Close())
		}
	}
	return errs.Aggregate()
}

func (b *Bridge) uplink() error {
	size := b.MaxPacket
	if size <= 0 {
		size = DefaultMaxPacket
	}
	buf := make([]byte, size)
	for {
		n, err := b.Line.Read(buf)
		if n > 0 {
			glog.V(2).Infof("bridge: line -> transport %d bytes", n)
			pkt := make([]byte, n)
			copy(pkt, buf[:n])
			if err := b.Transport.WritePacket(pkt); err != nil {
				return err
			}
		}
		if err != nil {
			return err
		}
	}
}

func (b *Bridge) downlink() error {
	for {
		pkt, err := b.Transport.ReadPacket()
		if err != nil {
			return err
		}
		glog.V(2).Infof("bridge: transport -> line %d bytes", len(pkt))
		if _, err := b.Line.Write(pkt); err != nil {
			return err
		}
	}
}
