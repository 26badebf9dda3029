package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
)

const defaultGlitchTicks = 20

var (
	// SendCmd sends text from the far end.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(fmt.Errorf("TEXT required"))
				return
			}
			if err := ShellFrom(c).Send([]byte(strings.Join(c.Args, " "))); err != nil {
				c.Err(err)
			}
		},
	}

	// KeyCmd sends a single byte, given as a character or a Go escape.
	KeyCmd = ishell.Cmd{
		Name:    "key",
		Aliases: []string{"k"},
		Help:    "C",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("exactly one key required"))
				return
			}
			b, err := ParseKey(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Send([]byte{b}); err != nil {
				c.Err(err)
			}
		},
	}

	// CmdCmd sends a diagnostic command.
	CmdCmd = ishell.Cmd{
		Name:    "cmd",
		Aliases: []string{"c"},
		Help:    "?|s|t|r",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 || len(c.Args[0]) != 1 || !strings.Contains("?str", c.Args[0]) {
				c.Err(fmt.Errorf("one of ? s t r expected"))
				return
			}
			if err := ShellFrom(c).Send([]byte(c.Args[0])); err != nil {
				c.Err(err)
			}
		},
	}

	// StatsCmd prints the counters of both ends without using the line.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "",
		Func: func(c *ishell.Context) {
			c.Print(ShellFrom(c).FormatStats())
		},
	}

	// TraceCmd prints the recent transitions of the transmit line.
	TraceCmd = ishell.Cmd{
		Name:    "trace",
		Aliases: []string{"tr"},
		Help:    "[N]",
		Func: func(c *ishell.Context) {
			n := 20
			if len(c.Args) > 0 {
				var err error
				if n, err = strconv.Atoi(c.Args[0]); err != nil {
					c.Err(fmt.Errorf("invalid N: %v", err))
					return
				}
			}
			c.Print(FormatTransitions(ShellFrom(c).Transitions(n)))
		},
	}

	// GlitchCmd injects a short low pulse on the receive line.
	GlitchCmd = ishell.Cmd{
		Name: "glitch",
		Help: "[TICKS]",
		Func: func(c *ishell.Context) {
			ticks := uint64(defaultGlitchTicks)
			if len(c.Args) > 0 {
				var err error
				if ticks, err = strconv.ParseUint(c.Args[0], 10, 64); err != nil || ticks == 0 {
					c.Err(fmt.Errorf("invalid TICKS: %q", c.Args[0]))
					return
				}
			}
			ShellFrom(c).Glitch(ticks)
		},
	}

	// RunCmd advances a paused machine.
	RunCmd = ishell.Cmd{
		Name:    "run",
		Aliases: []string{"r"},
		Help:    "TICKS",
		Func: func(c *ishell.Context) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("TICKS required"))
				return
			}
			ticks, err := strconv.ParseUint(c.Args[0], 10, 64)
			if err != nil {
				c.Err(fmt.Errorf("invalid TICKS: %v", err))
				return
			}
			if err := ShellFrom(c).Advance(ticks); err != nil {
				c.Err(err)
			}
		},
	}
)

// ParseKey parses a single character or a quoted Go escape like \x1b.
func ParseKey(arg string) (byte, error) {
	if len(arg) == 1 {
		return arg[0], nil
	}
	s, err := strconv.Unquote(`"` + arg + `"`)
	if err != nil || len(s) != 1 {
		return 0, fmt.Errorf("invalid key %q", arg)
	}
	return s[0], nil
}
