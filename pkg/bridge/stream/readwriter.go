// Package stream carries packets over byte streams.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxPacketSize bounds the length prefix accepted by ReadPacket.
const MaxPacketSize = 1 << 16

// ErrPacketTooLarge is returned for a length prefix beyond MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// ReadWriter implements PacketReadWriter.
// Each packet is prefixed by 4-byte (little-endian) indicate the length.
type ReadWriter struct {
	io.ReadWriter
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p.ReadWriter, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p.ReadWriter, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.ReadWriter.Write(buf)
	return err
}

// Close closes the underlying stream if it is an io.Closer.
func (p *ReadWriter) Close() error {
	return closeStream(p.ReadWriter)
}

// Raw implements PacketReadWriter without framing: a packet is
// whatever a single read returns.
type Raw struct {
	io.ReadWriter
	MaxPacket int
}

// NewRaw creates a Raw.
func NewRaw(s io.ReadWriter) *Raw {
	return &Raw{ReadWriter: s, MaxPacket: defaultRawPacket}
}

const defaultRawPacket = 256

// ReadPacket implements PacketReader.
func (p *Raw) ReadPacket() ([]byte, error) {
	size := p.MaxPacket
	if size <= 0 {
		size = defaultRawPacket
	}
	buf := make([]byte, size)
	for {
		n, err := p.ReadWriter.Read(buf)
		if n > 0 {
			return buf[:n], nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// WritePacket implements PacketWriter.
func (p *Raw) WritePacket(pkt []byte) error {
	_, err := p.ReadWriter.Write(pkt)
	return err
}

// Close closes the underlying stream if it is an io.Closer.
func (p *Raw) Close() error {
	return closeStream(p.ReadWriter)
}

func closeStream(s io.ReadWriter) error {
	if closer, ok := s.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Pair joins a reader and a writer, e.g. stdin and stdout.
type Pair struct {
	io.Reader
	io.Writer
}
