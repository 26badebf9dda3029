// Package diag is the diagnostic firmware running on top of a port:
// it echoes what it receives and answers single character commands.
package diag
