// Package core contains the plumbing under the step runner: the Locomotive,
// a serial FIFO task driver that gives each run its cooperative "next turn"
// scheduling, and value helpers used when reading callback-style arguments.
// It holds no business logic of its own.
package core
