// Package memory provides in-process implementations of driven ports.
// Nothing survives the process; they back ephemeral sessions and tests.
package memory
