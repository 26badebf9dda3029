// Package sh is an interactive bench for a simulated port: the shell
// plays the far end of the line.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/softuart/pkg/env"
	"github.com/robotalks/softuart/pkg/sim"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool

	Shell *ishell.Shell
	Env   *env.Env
	Trace *sim.Trace

	cancel func()
	done   chan error
}

var (
	// ErrNotPaused is returned when advancing a machine which runs by itself.
	ErrNotPaused = errors.New("machine is running, start with -paused")
	// ErrStopTimeout is returned when the loop doesn't stop in time.
	ErrStopTimeout = errors.New("loop didn't stop")
)

const stopTimeout = time.Second

const (
	shellKey = "$shell"
	prompt   = "uart > "
)

var (
	// flags

	evalOnly bool
	paused   bool

	// commands
	commands = []*ishell.Cmd{
		&SendCmd,
		&KeyCmd,
		&CmdCmd,
		&StatsCmd,
		&TraceCmd,
		&GlitchCmd,
		&RunCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&paused, "paused", paused, "Advance the machine only with the run command.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell on e.
func New(e *env.Env) *Shell {
	s := newShell(e)
	s.Interactive = !evalOnly
	s.Shell = ishell.New()
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(prompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

func newShell(e *env.Env) *Shell {
	return &Shell{
		Env:   e,
		Trace: e.Bench.Machine.Probe(e.Bench.TxWire),
	}
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Paused reports whether the machine only advances on request.
func (s *Shell) Paused() bool {
	return s.Env.Config.Paused
}

// Start runs the loop of the env in the background.
func (s *Shell) Start() {
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan error, 1)
	go func() { s.done <- s.Env.Run(ctx) }()
}

// Stop stops the loop started by Start. A paused machine may hold the
// loop in a blocking enqueue, so Stop gives up after stopTimeout.
func (s *Shell) Stop() error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil
	select {
	case err := <-s.done:
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	case <-time.After(stopTimeout):
		return ErrStopTimeout
	}
}

// Send makes the far end transmit data.
func (s *Shell) Send(data []byte) error {
	_, err := s.Env.Bench.Terminal.Write(data)
	return err
}

// Glitch pulls the receive line low for ticks, starting next tick.
func (s *Shell) Glitch(ticks uint64) {
	m := s.Env.Bench.Machine
	at := m.Now() + 1
	m.Schedule(s.Env.Bench.RxWire, at, false)
	m.Schedule(s.Env.Bench.RxWire, at+ticks, true)
}

// Advance runs a paused machine for ticks.
func (s *Shell) Advance(ticks uint64) error {
	if !s.Paused() {
		return ErrNotPaused
	}
	s.Env.Bench.Machine.Advance(ticks)
	return nil
}

// Transitions returns the last n transitions of the transmit line.
func (s *Shell) Transitions(n int) []sim.Transition {
	all := s.Trace.Transitions()
	if n > 0 && n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// FormatStats describes both ends of the line.
func (s *Shell) FormatStats() string {
	port, term := s.Env.Port.Stats(), s.Env.Bench.Terminal.Stats()
	var sb strings.Builder
	sb.WriteString(port.Report())
	fmt.Fprintf(&sb, "Ticks: %d\n", s.Env.Bench.Machine.Now())
	fmt.Fprintf(&sb, "Terminal sent: %d, received: %d, framing errors: %d, overruns: %d\n",
		term.Sent, term.Received, term.FramingErrors, term.Overruns)
	return sb.String()
}

// FormatTransitions renders transitions one per line.
func FormatTransitions(transitions []sim.Transition) string {
	var sb strings.Builder
	for _, tr := range transitions {
		level := "low"
		if tr.High {
			level = "high"
		}
		fmt.Fprintf(&sb, "%12d %s\n", tr.Tick, level)
	}
	return sb.String()
}

// printOutput prints what the far end receives until it's closed.
func (s *Shell) printOutput() {
	buf := make([]byte, 256)
	for {
		n, err := s.Env.Bench.Terminal.Read(buf)
		if n > 0 {
			s.Shell.Print(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	s.Start()
	go s.printOutput()
	defer func() {
		s.Env.Bench.Terminal.Close()
		if err := s.Stop(); err != nil {
			glog.Errorf("loop: %v", err)
		}
		s.Env.Close()
	}()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := env.NewConfig()
	conf.BridgeURL = "none"
	conf.Paused = paused
	New(conf.MustNewEnv()).Run(flag.Args()...)
}
