// Package uart implements an asynchronous serial port (8N1) in software
// using one free-running timer with two compare channels and one
// falling-edge interrupt.
//
// The port runs in two contexts. Interrupt handlers (transmit compare,
// receive edge, receive compare) are called by the hardware with
// interrupts masked and never block. The application (foreground) only
// touches the port through Port methods, and every access to state
// shared with a handler happens inside the hardware critical section.
//
// Transmit: Enqueue puts a byte into the TX ring and arms the transmit
// compare. Each compare event shifts one bit out and schedules the next
// event one bit period after the previous compare value, so timing error
// never accumulates across a frame.
//
// Receive: a falling edge arms the receive compare 1.5 bit periods later,
// the middle of data bit 0. Eight samples follow one bit period apart;
// on the next event (the stop bit midpoint) the byte is stored and the
// edge interrupt is armed again. Stop bits are not validated.
package uart
