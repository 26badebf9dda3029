package env

import (
	"fmt"
	"net"
	"net/url"
	"os"

	"github.com/robotalks/softuart/pkg/bridge"
	"github.com/robotalks/softuart/pkg/bridge/mqtt"
	"github.com/robotalks/softuart/pkg/bridge/serial"
	"github.com/robotalks/softuart/pkg/bridge/stream"
	"github.com/robotalks/softuart/pkg/bridge/websocket"
)

// NewTransport creates the transport named by rawURL for device id.
// It returns nil for none.
func NewTransport(rawURL, id string) (bridge.PacketReadWriter, error) {
	if rawURL == "" || rawURL == "none" {
		return nil, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid bridge URL: %w", err)
	}
	switch u.Scheme {
	case "stdio":
		return stream.NewRaw(&stream.Pair{Reader: os.Stdin, Writer: os.Stdout}), nil
	case "tcp":
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		if u.Query().Get("framed") != "" {
			return stream.New(conn), nil
		}
		return stream.NewRaw(conn), nil
	case "ws", "wss":
		return orNil(websocket.Dial(rawURL))
	case "mqtt", "mqtts":
		if u.Scheme == "mqtts" {
			u.Scheme = "ssl"
		}
		return orNil(mqtt.DialLine(u.String(), id))
	case "serial":
		return orNil(serial.Open(rawURL))
	default:
		return nil, fmt.Errorf("unknown bridge URL scheme: %q", u.Scheme)
	}
}

// orNil keeps a failed dial from returning a typed nil transport.
func orNil(t bridge.PacketReadWriter, err error) (bridge.PacketReadWriter, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}
