package uart

import "errors"

var (
	// ErrInvalidBaud indicates the baud rate gives no usable bit period.
	ErrInvalidBaud = errors.New("invalid baud rate")
	// ErrInvalidConfig indicates an invalid port configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrIRQInUse indicates an interrupt already has a handler,
	// i.e. another port owns the hardware.
	ErrIRQInUse = errors.New("interrupt already in use")
	// ErrBufferFull indicates the transmit buffer had no room.
	ErrBufferFull = errors.New("buffer full")
	// ErrDropped indicates a received byte was discarded because
	// the receive buffer was full.
	ErrDropped = errors.New("received byte dropped")
)

// Status is the outcome of a buffer operation.
type Status int

// Status values.
const (
	StatusOK         Status = iota // stored
	StatusBufferFull               // not stored, caller may retry
	StatusDropped                  // not stored, discarded for good
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBufferFull:
		return "buffer-full"
	case StatusDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Err returns the corresponding error, nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusBufferFull:
		return ErrBufferFull
	default:
		return ErrDropped
	}
}
