// Package msgs defines the messages published about a port.
package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/softuart/pkg/uart"
)

// StatsReport is the telemetry form of the port counters.
type StatsReport struct {
	TxBytes     uint32 `protobuf:"varint,1,opt,name=tx_bytes,json=txBytes,proto3" json:"tx_bytes,omitempty"`
	RxBytes     uint32 `protobuf:"varint,2,opt,name=rx_bytes,json=rxBytes,proto3" json:"rx_bytes,omitempty"`
	RxEdges     uint32 `protobuf:"varint,3,opt,name=rx_edges,json=rxEdges,proto3" json:"rx_edges,omitempty"`
	RxDropped   uint32 `protobuf:"varint,4,opt,name=rx_dropped,json=rxDropped,proto3" json:"rx_dropped,omitempty"`
	Available   uint32 `protobuf:"varint,5,opt,name=available,proto3" json:"available,omitempty"`
	Baud        uint32 `protobuf:"varint,6,opt,name=baud,proto3" json:"baud,omitempty"`
	TicksPerBit uint32 `protobuf:"varint,7,opt,name=ticks_per_bit,json=ticksPerBit,proto3" json:"ticks_per_bit,omitempty"`
}

// NewStatsReport creates a report from a counters snapshot.
func NewStatsReport(st uart.Stats, baud int, ticksPerBit uint16) *StatsReport {
	return &StatsReport{
		TxBytes:     st.TxBytes,
		RxBytes:     st.RxBytes,
		RxEdges:     st.RxEdges,
		RxDropped:   st.RxDropped,
		Available:   uint32(st.Available),
		Baud:        uint32(baud),
		TicksPerBit: uint32(ticksPerBit),
	}
}

// DecodeStatsReport parses an encoded report.
func DecodeStatsReport(data []byte) (*StatsReport, error) {
	m := &StatsReport{}
	if err := proto.Unmarshal(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Encode serializes the report.
func (m *StatsReport) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// Stats converts the report back to a counters snapshot.
func (m *StatsReport) Stats() uart.Stats {
	return uart.Stats{
		TxBytes:   m.TxBytes,
		RxBytes:   m.RxBytes,
		RxEdges:   m.RxEdges,
		RxDropped: m.RxDropped,
		Available: int(m.Available),
	}
}

// ProtoMessage implements proto.Message.
func (m *StatsReport) ProtoMessage() {}

// Reset implements proto.Message.
func (m *StatsReport) Reset() { *m = StatsReport{} }

// String implements proto.Message.
func (m *StatsReport) String() string { return proto.CompactTextString(m) }
