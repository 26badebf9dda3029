package uart

import "fmt"

// counters are updated by interrupt handlers and read or reset by
// the application inside the critical section.
type counters struct {
	txBytes   uint32
	rxBytes   uint32
	rxEdges   uint32
	rxDropped uint32
}

// Stats is a snapshot of the port counters.
type Stats struct {
	// TxBytes counts bytes taken from the transmit buffer onto the line.
	TxBytes uint32
	// RxBytes counts every byte assembled from the line, dropped or not.
	RxBytes uint32
	// RxEdges counts start edge interrupts.
	RxEdges uint32
	// RxDropped counts received bytes discarded on a full buffer.
	RxDropped uint32
	// Available is the number of received bytes waiting to be read.
	Available int
}

// Report formats the snapshot the way the diagnostic console prints it.
func (s Stats) Report() string {
	return fmt.Sprintf("TX bytes: %d\nRX bytes: %d\nRX interrupts: %d\nRX dropped: %d\nBuffer available: %d\n",
		s.TxBytes, s.RxBytes, s.RxEdges, s.RxDropped, s.Available)
}
