package serial

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigFromURL(t *testing.T) {
	conf, err := ConfigFromURL("serial:///dev/ttyUSB0?baud=115200")
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", conf.Name)
	require.Equal(t, 115200, conf.Baud)
	require.Equal(t, DefaultReadTimeout, conf.ReadTimeout)

	conf, err = ConfigFromURL("serial:COM3")
	require.NoError(t, err)
	require.Equal(t, "COM3", conf.Name)
	require.Equal(t, DefaultBaud, conf.Baud)

	for _, bad := range []string{"tcp://host:1", "serial://", "serial:///dev/ttyS0?baud=fast", "serial:///dev/ttyS0?baud=-1"} {
		_, err = ConfigFromURL(bad)
		require.Error(t, err, bad)
	}
}

type scriptedPort struct {
	reads []string
	errs  []error
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	s, err := p.reads[0], p.errs[0]
	p.reads, p.errs = p.reads[1:], p.errs[1:]
	return copy(b, s), err
}

func (p *scriptedPort) Write(b []byte) (int, error) { return len(b), nil }
func (p *scriptedPort) Close() error                { return nil }

func TestRetryTimeouts(t *testing.T) {
	p := retryTimeouts{&scriptedPort{
		reads: []string{"", "", "ok", ""},
		errs:  []error{nil, io.EOF, nil, os.ErrClosed},
	}}
	buf := make([]byte, 8)
	n, err := p.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ok", string(buf[:n]))
	_, err = p.Read(buf)
	require.Equal(t, os.ErrClosed, err)
}
