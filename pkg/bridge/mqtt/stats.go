package mqtt

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/softuart/pkg/framework"
	"github.com/robotalks/softuart/pkg/msgs"
	"github.com/robotalks/softuart/pkg/uart"
)

// DefaultStatsInterval is how often counters are published.
const DefaultStatsInterval = time.Second

// StatsPublisher publishes the port counters as msgs.StatsReport,
// retained, to id/stats.
type StatsPublisher struct {
	Publisher Publisher
	Port      *uart.Port
	Topic     string
	Interval  time.Duration

	last time.Time
}

// NewStatsPublisher creates a StatsPublisher.
func NewStatsPublisher(pub Publisher, port *uart.Port, id string) *StatsPublisher {
	return &StatsPublisher{
		Publisher: pub,
		Port:      port,
		Topic:     id + "/" + TopicStats,
		Interval:  DefaultStatsInterval,
	}
}

// AddToLoop implements LoopAdder.
func (s *StatsPublisher) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, s)
}

// Control implements Controller.
func (s *StatsPublisher) Control(cc fx.ControlContext) error {
	if now := cc.Time(); s.last.IsZero() || now.Sub(s.last) >= s.Interval {
		s.last = now
		return s.Publish()
	}
	return nil
}

// Publish publishes the counters now, without waiting for delivery.
func (s *StatsPublisher) Publish() error {
	report := msgs.NewStatsReport(s.Port.Stats(), s.Port.Baud(), s.Port.TicksPerBit())
	data, err := report.Encode()
	if err != nil {
		return err
	}
	token := s.Publisher.PubWith(s.Topic, data, 0, true)
	go func() {
		if token.Wait(); token.Error() != nil {
			glog.Warningf("mqtt: publish stats: %v", token.Error())
		}
	}()
	return nil
}
