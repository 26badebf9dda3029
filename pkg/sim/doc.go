// Package sim is a cycle level model of the microcontroller resources a
// software UART needs: a 16-bit timer with two compare channels, one
// falling edge detector, GPIO wires, and an interrupt controller with a
// global mask. It runs the port on a host and is the test bench of the
// uart package.
package sim
