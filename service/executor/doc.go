// Package executor implements the node-type executors and the registry that
// maps a node's type tag to its executor and typed configuration.
package executor
