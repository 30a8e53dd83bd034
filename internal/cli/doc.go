// Package cli implements the mangashelf command line: the HTTP server plus
// one-shot maintenance commands that share the server's wiring.
package cli
