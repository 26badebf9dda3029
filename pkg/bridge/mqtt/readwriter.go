package mqtt

import (
	"context"
	"io"
)

// Topic suffixes of a line: rx carries bytes towards the port,
// tx the bytes the port transmitted.
const (
	TopicRx    = "rx"
	TopicTx    = "tx"
	TopicStats = "stats"
)

// ReadWriter implements PacketReadWriter over a pair of topics.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForLine sets topics for the line side of device id:
// SubTopic = id/rx
// PubTopic = id/tx
func (p *ReadWriter) ForLine(id string) *ReadWriter {
	return p.WithTopics(id+"/"+TopicRx, id+"/"+TopicTx)
}

// ForRemote sets topics for a remote peer of device id:
// SubTopic = id/tx
// PubTopic = id/rx
func (p *ReadWriter) ForRemote(id string) *ReadWriter {
	return p.WithTopics(id+"/"+TopicTx, id+"/"+TopicRx)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	defer close(p.done)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}

// Line is the line side transport of a device with its own broker
// connection.
type Line struct {
	*ReadWriter
}

// DialLine connects to the broker and returns the line transport of id.
func DialLine(brokerURL, id string) (*Line, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if err := q.Connect(); err != nil {
		return nil, err
	}
	return &Line{ReadWriter: NewPacketReadWriter(q).ForLine(id)}, nil
}

// Close implements io.Closer, disconnecting from the broker.
func (l *Line) Close() error {
	return l.Queue.Close()
}
