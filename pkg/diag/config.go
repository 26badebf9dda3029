package diag

import (
	"flag"

	"github.com/robotalks/softuart/pkg/uart"
)

// DefaultStatsEvery is the number of loop iterations between
// periodic statistics reports in debug mode.
const DefaultStatsEvery = 10000

// Config defines the configurations for the interpreter.
type Config struct {
	Debug      bool
	StatsEvery uint64
	// Snapshot echoes whatever is buffered in one go instead of
	// interpreting byte by byte.
	Snapshot bool
}

var defaultConfig = Config{
	Debug:      true,
	StatsEvery: DefaultStatsEvery,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Debug, "debug", defaultConfig.Debug, "Annotate received bytes and report statistics periodically.")
	flag.Uint64Var(&defaultConfig.StatsEvery, "stats-every", defaultConfig.StatsEvery, "Loop iterations between statistics reports in debug mode, 0 disables.")
	flag.BoolVar(&defaultConfig.Snapshot, "snapshot", defaultConfig.Snapshot, "Plain snapshot echo, no commands.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewApp creates the application controller for port selected by the config.
func (c *Config) NewApp(port *uart.Port) App {
	if c.Snapshot {
		return NewEcho(port)
	}
	in := NewInterpreter(port)
	in.Debug = c.Debug
	in.StatsEvery = c.StatsEvery
	return in
}
