package env

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/robotalks/softuart/pkg/diag"
	"github.com/robotalks/softuart/pkg/sim"
	"github.com/robotalks/softuart/pkg/uart"
)

// Config provides the options to set up a simulated port.
type Config struct {
	Port uart.Config
	// TickRate is the timer frequency in Hz.
	TickRate uint
	// Realtime paces the simulation to wall clock time.
	Realtime bool
	// Paused leaves the machine to whoever advances it explicitly.
	Paused bool
	// TerminalBaud is the baud rate of the far end, 0 for the port's.
	TerminalBaud int

	// BridgeURL connects the far end of the line, e.g.
	// stdio:, tcp://host:port, ws://host/path, mqtt://host:1883/prefix/,
	// serial:///dev/ttyUSB0?baud=9600, or none.
	BridgeURL string
	// ID names the device on shared transports.
	ID string
	// MQTTURL specifies the broker receiving statistics, empty disables.
	MQTTURL string

	Diag diag.Config
}

var (
	defaultConfig = Config{
		Port: uart.Config{
			Baud:       uart.DefaultBaud,
			BufferSize: uart.DefaultBufferSize,
		},
		TickRate:  uint(sim.DefaultTickRate),
		Realtime:  true,
		BridgeURL: "stdio:",
	}
	envErr error
)

func init() {
	defaultConfig.ID = MachineID()
	envErr = defaultConfig.LoadEnv()
}

// LoadEnv overrides the config from SOFTUART_* environment variables.
func (c *Config) LoadEnv() error {
	ints := []struct {
		name string
		val  *int
	}{
		{"SOFTUART_BAUD", &c.Port.Baud},
		{"SOFTUART_BUFFER", &c.Port.BufferSize},
	}
	for _, v := range ints {
		if str := os.Getenv(v.name); str != "" {
			n, err := strconv.Atoi(str)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", v.name, err)
			}
			*v.val = n
		}
	}
	if str := os.Getenv("SOFTUART_TICK_RATE"); str != "" {
		n, err := strconv.ParseUint(str, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SOFTUART_TICK_RATE: %w", err)
		}
		c.TickRate = uint(n)
	}
	if val := os.Getenv("SOFTUART_BRIDGE_URL"); val != "" {
		c.BridgeURL = val
	}
	if val := os.Getenv("SOFTUART_ID"); val != "" {
		c.ID = val
	}
	if val := os.Getenv("SOFTUART_MQTT_URL"); val != "" {
		c.MQTTURL = val
	}
	return nil
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Port.Baud, "baud", defaultConfig.Port.Baud, "Baud rate of the port.")
	flag.IntVar(&defaultConfig.Port.BufferSize, "buffer", defaultConfig.Port.BufferSize, "Slots per ring buffer, holding one byte less.")
	flag.UintVar(&defaultConfig.TickRate, "tick-rate", defaultConfig.TickRate, "Timer ticks per second.")
	flag.BoolVar(&defaultConfig.Realtime, "realtime", defaultConfig.Realtime, "Pace the simulation to wall clock time.")
	flag.IntVar(&defaultConfig.TerminalBaud, "terminal-baud", defaultConfig.TerminalBaud, "Baud rate of the far end, 0 for the port's.")
	flag.StringVar(&defaultConfig.BridgeURL, "bridge", defaultConfig.BridgeURL, "Bridge URL of the far end of the line, none to disable.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Device ID.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL for statistics.")
	diag.SetupFlags()
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Diag = *diag.Default()
	return &conf
}
