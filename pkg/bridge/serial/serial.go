// Package serial bridges a simulated line to a real serial port.
package serial

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/tarm/serial"

	"github.com/robotalks/softuart/pkg/bridge/stream"
)

// DefaultBaud is used when the URL doesn't specify one.
const DefaultBaud = 9600

// DefaultReadTimeout bounds a read so the bridge notices a stop.
const DefaultReadTimeout = 100 * time.Millisecond

// ConfigFromURL parses serial:///dev/ttyUSB0?baud=115200.
func ConfigFromURL(portURL string) (*serial.Config, error) {
	u, err := url.Parse(portURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "serial" {
		return nil, fmt.Errorf("not a serial URL: %s", portURL)
	}
	name := u.Path
	if name == "" {
		name = u.Opaque
	}
	if name == "" {
		return nil, fmt.Errorf("serial URL without device: %s", portURL)
	}
	conf := &serial.Config{Name: name, Baud: DefaultBaud, ReadTimeout: DefaultReadTimeout}
	if baud := u.Query().Get("baud"); baud != "" {
		if conf.Baud, err = strconv.Atoi(baud); err != nil || conf.Baud <= 0 {
			return nil, fmt.Errorf("invalid baud %q", baud)
		}
	}
	return conf, nil
}

// Open opens the port named by the URL as an unframed transport.
func Open(portURL string) (*stream.Raw, error) {
	conf, err := ConfigFromURL(portURL)
	if err != nil {
		return nil, err
	}
	port, err := serial.OpenPort(conf)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Name, err)
	}
	return stream.NewRaw(retryTimeouts{port}), nil
}

// retryTimeouts hides read timeouts, which the driver reports as
// empty reads, so only Close ends a read.
type retryTimeouts struct {
	io.ReadWriteCloser
}

func (p retryTimeouts) Read(b []byte) (int, error) {
	for {
		n, err := p.ReadWriteCloser.Read(b)
		if n == 0 && (err == nil || err == io.EOF) {
			continue
		}
		return n, err
	}
}
