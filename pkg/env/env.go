// Package env assembles a simulated port, its firmware and its
// bridges from configuration.
package env

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/golang/glog"

	"github.com/robotalks/softuart/pkg/bridge"
	"github.com/robotalks/softuart/pkg/bridge/mqtt"
	"github.com/robotalks/softuart/pkg/diag"
	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/sim"
	"github.com/robotalks/softuart/pkg/uart"
)

// Env is a running setup: the machine with the port, the firmware
// on top of it and whatever the far end of the line is bridged to.
type Env struct {
	Config *Config
	Bench  *sim.Bench
	Port   *uart.Port
	App    diag.App
	Bridge *bridge.Bridge
	Stats  *mqtt.StatsPublisher

	statsQueue *mqtt.Queue
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if envErr != nil {
		return nil, envErr
	}
	if c.TickRate == 0 || uint64(c.TickRate) > math.MaxUint32 {
		return nil, fmt.Errorf("invalid tick rate %d", c.TickRate)
	}
	termBaud := c.TerminalBaud
	if termBaud == 0 {
		termBaud = c.Port.Baud
	}
	if termBaud <= 0 {
		return nil, fmt.Errorf("%w: terminal %d", uart.ErrInvalidBaud, termBaud)
	}

	e := &Env{Config: c, Bench: sim.NewBench(uint32(c.TickRate), termBaud)}
	e.Bench.Machine.Realtime = c.Realtime
	port, err := e.Bench.NewPort(c.Port)
	if err != nil {
		return nil, err
	}
	e.Port = port
	e.App = c.Diag.NewApp(port)

	transport, err := NewTransport(c.BridgeURL, c.ID)
	if err != nil {
		return nil, fmt.Errorf("bridge %s: %w", c.BridgeURL, err)
	}
	if transport != nil {
		e.Bridge = bridge.New(e.Bench.Terminal, transport)
	}

	if c.MQTTURL != "" {
		if e.statsQueue, err = mqtt.NewQueueFromURL(c.MQTTURL); err != nil {
			e.Close()
			return nil, fmt.Errorf("mqtt %s: %w", c.MQTTURL, err)
		}
		if err = e.statsQueue.Connect(); err != nil {
			e.Close()
			return nil, fmt.Errorf("mqtt %s: %w", c.MQTTURL, err)
		}
		e.Stats = mqtt.NewStatsPublisher(e.statsQueue, port, c.ID)
	}
	glog.Infof("env: device %s, bridge %q", c.ID, c.BridgeURL)
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// Name implements Named.
func (e *Env) Name() string {
	return "env"
}

// Run implements Runnable: it runs the loop with everything added by
// AddToLoop and, unless paused, the line service. The line service
// stops only after the loop returned, so an enqueue in flight when ctx
// is done still completes.
func (e *Env) Run(ctx context.Context) error {
	loop := fx.NewLoop().Add(e)
	if e.Config.Paused {
		return loop.Run(ctx)
	}
	lineCtx, stopLine := context.WithCancel(context.Background())
	line := fx.NewRunnerWith(lineCtx).Go(e.Bench.Machine)
	err := loop.Run(ctx)
	stopLine()
	if lineErr := line.Wait(); lineErr != nil {
		glog.Errorf("line service: %v", lineErr)
	}
	return err
}

// AddToLoop implements LoopAdder. The line service is not added, see Run.
// The banner goes out on the first iteration.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvTop, fx.ControlFunc(func(cc fx.ControlContext) error {
		if cc.Iteration() == 1 {
			e.App.Banner()
		}
		return nil
	}))
	loop.Add(e.App)
	if e.Bridge != nil {
		loop.Add(e.Bridge)
	}
	if e.Stats != nil {
		loop.Add(e.Stats)
	}
}

// Close releases the connections.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	if e.Bridge != nil {
		errs.Add(e.Bridge.Close())
	}
	errs.Add(e.Bench.Terminal.Close())
	if e.statsQueue != nil {
		errs.Add(e.statsQueue.Close())
	}
	return errs.Aggregate()
}
